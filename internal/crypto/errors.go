// Package crypto implements the key hierarchy and authenticated cipher
// that every other Keydrop component builds on: master key derivation,
// purpose-specific subkeys, and the AEAD envelope used for vault items
// and the at-rest vault blob.
package crypto

import "errors"

// ErrInvalidCiphertext is returned whenever Open fails authentication,
// for any reason (wrong key, wrong associated data, truncation, or a
// genuinely corrupted buffer). Callers must not try to distinguish the
// cause from this error alone.
var ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")

// ErrInvalidKDFParams is returned by DeriveMasterKey when the supplied
// parameters cannot produce a key (e.g. a memory cost of zero).
var ErrInvalidKDFParams = errors.New("crypto: invalid kdf parameters")
