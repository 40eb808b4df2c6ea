package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

const (
	// MasterKeySize is the length in bytes of a derived master key.
	MasterKeySize = 32
	// SaltSize is the length in bytes of the Argon2id salt persisted
	// alongside the vault ciphertext.
	SaltSize = 16
)

// KDFParams are the Argon2id parameters used to derive a master key.
// They travel with the vault's schema_version so a future default
// change can be detected instead of silently breaking unlock.
type KDFParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDFParams returns OWASP-recommended Argon2id parameters
// calibrated to run in at least 100ms on a reference laptop CPU.
func DefaultKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 64 * 1024, Iterations: 3, Parallelism: 1}
}

func (p KDFParams) validate() bool {
	return p.MemoryKiB > 0 && p.Iterations > 0 && p.Parallelism > 0
}

// NewSalt draws SaltSize random bytes from a cryptographic RNG.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveMasterKey turns a master password and salt into a 32-byte master
// key using Argon2id. It fails only on invalid parameters, never on the
// content of password or salt.
func DeriveMasterKey(password string, salt []byte, params KDFParams) ([]byte, error) {
	if !params.validate() {
		return nil, ErrInvalidKDFParams
	}
	if len(salt) == 0 {
		return nil, ErrInvalidKDFParams
	}
	key := argon2.IDKey([]byte(password), salt, params.Iterations, params.MemoryKiB, params.Parallelism, MasterKeySize)
	return key, nil
}
