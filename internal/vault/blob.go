package vault

import (
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/keydrop/keydrop-core/internal/crypto"
)

// Blob is the at-rest container for one client's vault: everything
// needed to re-derive the vault key and decrypt the payload, per
// schema_version gates interpretation of KDFParams and the
// envelope's plaintext shape so a future format change is detectable
// instead of silently corrupting unlock.
type Blob struct {
	SchemaVersion int              `cbor:"schema_version"`
	Salt          []byte           `cbor:"salt"`
	KDFParams     crypto.KDFParams `cbor:"kdf_params"`
	Envelope      crypto.Envelope  `cbor:"envelope"`
}

// payload is the JSON shape the envelope decrypts to.
type payload struct {
	Version    int         `json:"version"`
	Items      []VaultItem `json:"items"`
	Categories []string    `json:"categories"`
	LastSync   *int64      `json:"last_sync"`
}

// Store persists and retrieves the single encrypted blob for a client.
// Concrete storage (file, SQLite, browser local storage) is outside
// this package's scope; callers supply an implementation.
type Store interface {
	Load() ([]byte, error)
	Save(blob []byte) error
	// Exists reports whether a blob has already been persisted.
	Exists() (bool, error)
}

// encodeBlob CBOR-marshals a Blob for persistence.
func encodeBlob(b Blob) ([]byte, error) {
	return cbor.Marshal(b)
}

// decodeBlob CBOR-unmarshals persisted bytes into a Blob.
func decodeBlob(raw []byte) (Blob, error) {
	var b Blob
	if err := cbor.Unmarshal(raw, &b); err != nil {
		return Blob{}, err
	}
	return b, nil
}

// sealVault encrypts v as the whole-blob payload. Associated data is
// the empty byte string (whole-vault blobs are not
// bound to an item id/version the way per-item sync records are).
func sealVault(v *Vault, key []byte) (crypto.Envelope, error) {
	p := payload{
		Version:    v.SchemaVersion,
		Items:      v.Items,
		Categories: v.Categories,
		LastSync:   v.LastSync,
	}
	plaintext, err := json.Marshal(p)
	if err != nil {
		return crypto.Envelope{}, err
	}
	return crypto.Encrypt(key, plaintext, nil)
}

// openVault decrypts an envelope into a Vault. Any failure is surfaced
// uniformly as ErrUnauthorized by the caller.
func openVault(env crypto.Envelope, key []byte) (*Vault, error) {
	plaintext, err := crypto.Decrypt(key, env, nil)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, err
	}
	v := &Vault{
		SchemaVersion: p.Version,
		Items:         p.Items,
		Categories:    p.Categories,
		LastSync:      p.LastSync,
	}
	if v.Items == nil {
		v.Items = []VaultItem{}
	}
	v.reindex()
	return v, nil
}
