// Package authtoken implements the server side of bearer
// authentication: hashing/verifying the client-derived auth subkey and
// issuing/validating short-lived JWT access tokens.
package authtoken

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash is returned when an encoded verifier cannot be parsed.
var ErrInvalidHash = errors.New("authtoken: invalid verifier hash")

// VerifierParams are the Argon2id parameters used to hash the auth
// subkey before it is stored. The server never sees the master
// password or vault key — only the HKDF-derived auth subkey — so these
// parameters protect against a stolen-database offline attack on that
// subkey, not against password guessing.
type VerifierParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     int
	KeyLen      uint32
}

// DefaultVerifierParams mirrors the KDF defaults used elsewhere in the
// stack.
var DefaultVerifierParams = VerifierParams{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLen:     16,
	KeyLen:      32,
}

// HashVerifier encodes authSubkey as argon2id$m=...,t=...,p=...$salt$hash
// using a fresh random salt, for persistence as User.AuthVerifierHash.
func HashVerifier(params VerifierParams, authSubkey []byte) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey(authSubkey, salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.KeyLen)
	return fmt.Sprintf("argon2id$m=%d,t=%d,p=%d$%s$%s",
		params.MemoryKiB, params.Iterations, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyVerifier checks authSubkey against a previously hashed encoded
// string. It never returns a different error for "wrong subkey" versus
// "malformed stored hash" to the caller's boolean result — only
// ErrInvalidHash signals the latter, and callers MUST treat both as
// Unauthorized at the HTTP boundary.
func VerifyVerifier(authSubkey []byte, encoded string) (bool, error) {
	const prefix = "argon2id$"
	if !strings.HasPrefix(encoded, prefix) {
		return false, ErrInvalidHash
	}
	parts := strings.Split(encoded[len(prefix):], "$")
	if len(parts) != 3 {
		return false, ErrInvalidHash
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[0], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, ErrInvalidHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey(authSubkey, salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
