package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purpose-specific HKDF context strings. Each derives a distinct subkey
// from the same master key so that compromise of one purpose's key
// (e.g. the auth key sent to the server) never leaks another's.
const (
	ctxVaultKey   = "keydrop-vault-key"
	ctxAuthKey    = "keydrop-auth-key"
	ctxSharingKey = "keydrop-sharing-key"
)

const subkeySize = 32

// KeySet holds the three 32-byte subkeys derived from a master key.
type KeySet struct {
	VaultKey   []byte
	AuthKey    []byte
	SharingKey []byte
}

// Zero overwrites every subkey in the set.
func (k *KeySet) Zero() {
	Zero(k.VaultKey)
	Zero(k.AuthKey)
	Zero(k.SharingKey)
}

// DeriveKeys expands a 32-byte master key into vault/auth/sharing
// subkeys using HKDF-SHA256 with an empty salt. The master key is
// extracted into a pseudorandom key once, then expanded three times
// with distinct info strings, so all three subkeys are bound to the
// same extract step instead of being independently re-derived.
func DeriveKeys(masterKey []byte) (KeySet, error) {
	prk := hkdf.Extract(sha256.New, masterKey, nil)

	vaultKey, err := expand(prk, ctxVaultKey)
	if err != nil {
		return KeySet{}, err
	}
	authKey, err := expand(prk, ctxAuthKey)
	if err != nil {
		return KeySet{}, err
	}
	sharingKey, err := expand(prk, ctxSharingKey)
	if err != nil {
		return KeySet{}, err
	}
	return KeySet{VaultKey: vaultKey, AuthKey: authKey, SharingKey: sharingKey}, nil
}

// expand derives one subkey of subkeySize bytes from prk using info as
// the HKDF context string.
func expand(prk []byte, info string) ([]byte, error) {
	out := make([]byte, subkeySize)
	reader := hkdf.Expand(sha256.New, prk, []byte(info))
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
