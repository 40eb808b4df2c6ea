// Package vault implements the client-side vault model: item CRUD,
// tombstones, search, URL matching, and the at-rest blob format.
package vault

import "errors"

var (
	// ErrAlreadyExists is returned by Create when persisted vault state
	// is already present at the target location.
	ErrAlreadyExists = errors.New("vault: already exists")

	// ErrUnauthorized is returned by Unlock when the supplied master
	// password fails to decrypt the stored blob. It is also used for
	// any authenticated-envelope failure so callers never distinguish
	// "wrong password" from "corrupted data".
	ErrUnauthorized = errors.New("vault: unauthorized")

	// ErrInvalidPolicy marks a validation failure on a VaultItem field.
	ErrInvalidPolicy = errors.New("vault: invalid policy")

	// ErrGone is returned when a caller attempts to write to an item
	// whose tombstone is already set.
	ErrGone = errors.New("vault: gone")

	// ErrLocked is returned by any vault operation attempted while the
	// vault has no vault key loaded.
	ErrLocked = errors.New("vault: locked")

	// ErrNotFound is returned when an operation references an item id
	// that does not exist in the vault.
	ErrNotFound = errors.New("vault: item not found")
)
