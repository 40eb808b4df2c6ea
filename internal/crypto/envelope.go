package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

const (
	// NonceSize is the length in bytes of a GCM nonce.
	NonceSize = 12
	// TagSize is the length in bytes of the GCM authentication tag.
	TagSize = 16
)

// Envelope is the (nonce, ciphertext, tag) triple produced by Encrypt.
// It serializes as nonce‖ciphertext‖tag.
type Envelope struct {
	Nonce      []byte
	Ciphertext []byte // includes the trailing GCM tag
}

// Encrypt seals plaintext under key (32 bytes, AES-256-GCM) with a fresh
// random nonce drawn from a cryptographic RNG. associatedData is
// authenticated but not encrypted; per the vault's conventions it must
// equal item_id‖sync_version when binding ciphertext to a sync record,
// and be empty when sealing the whole-vault blob.
func Encrypt(key, plaintext, associatedData []byte) (Envelope, error) {
	aead, err := newGCM(key)
	if err != nil {
		return Envelope{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, associatedData)
	return Envelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Decrypt authenticates and opens an envelope. Any authentication
// failure — wrong key, wrong associated data, truncation, or replay from
// a different version — surfaces as ErrInvalidCiphertext with no
// further detail, so callers cannot build a "wrong password" vs.
// "corrupted data" oracle from it.
func Decrypt(key []byte, env Envelope, associatedData []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(env.Nonce) != NonceSize {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, associatedData)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	return plaintext, nil
}

// Marshal concatenates nonce‖ciphertext(+tag) into a single buffer
// suitable for base64 or CBOR byte-string storage.
func (e Envelope) Marshal() []byte {
	out := make([]byte, 0, len(e.Nonce)+len(e.Ciphertext))
	out = append(out, e.Nonce...)
	out = append(out, e.Ciphertext...)
	return out
}

// UnmarshalEnvelope splits a nonce‖ciphertext(+tag) buffer back into an
// Envelope. It does not itself authenticate anything; that happens in
// Decrypt.
func UnmarshalEnvelope(buf []byte) (Envelope, error) {
	if len(buf) < NonceSize+TagSize {
		return Envelope{}, ErrInvalidCiphertext
	}
	return Envelope{
		Nonce:      buf[:NonceSize],
		Ciphertext: buf[NonceSize:],
	}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
