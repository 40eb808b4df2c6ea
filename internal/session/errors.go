// Package session implements the client Session Controller: the
// locked/unlocked state machine, the auto-lock probe, and the optional
// biometric-wrapped master password slot layered on top of the Vault
// Model.
package session

import "errors"

var (
	// ErrLocked is returned by any operation that requires the session
	// to be unlocked.
	ErrLocked = errors.New("session: locked")

	// ErrBiometricUnavailable is returned when no biometric slot has
	// been enrolled.
	ErrBiometricUnavailable = errors.New("session: biometric unavailable")

	// ErrBiometricInvalidated is returned when the platform keystore
	// fails to unwrap a biometric slot, for any reason (e.g. its key was
	// invalidated because the user re-enrolled their fingerprint). The
	// slot is discarded.
	ErrBiometricInvalidated = errors.New("session: biometric slot invalidated")
)
