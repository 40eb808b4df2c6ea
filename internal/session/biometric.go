package session

import (
	"github.com/keydrop/keydrop-core/internal/crypto"
)

// PlatformKeystore is the thin adapter a platform (iOS Secure Enclave,
// Android Keystore, Windows Hello) implements to gate a wrap/unwrap
// operation behind a "strong" biometric check. This package only
// consumes the interface; concrete implementations live outside the
// core (platform glue is out of scope).
type PlatformKeystore interface {
	// Wrap encrypts plaintext under a key held in the platform
	// keystore, prompting for biometric authentication if required by
	// the platform's policy.
	Wrap(plaintext []byte) (wrapped []byte, err error)
	// Unwrap decrypts a previously wrapped blob, prompting for
	// biometric authentication. It returns an error if the keystore key
	// has been invalidated since wrapping; UnlockWithBiometric treats
	// any Unwrap error as invalidation.
	Unwrap(wrapped []byte) (plaintext []byte, err error)
}

// BiometricStore persists the wrapped secret produced by EnableBiometric
// alongside the vault's salt. Concrete storage is outside this
// package's scope; callers supply an implementation.
type BiometricStore interface {
	Load() (wrapped []byte, ok bool, err error)
	Save(wrapped []byte) error
	Clear() error
}

// EnableBiometric wraps password under ks and persists it via store. It
// requires the session to already be Unlocked (the slot is created
// "after a successful unlock"). The supplied password is not checked
// against the vault; whatever string is passed is what gets wrapped.
func (c *Controller) EnableBiometric(ks PlatformKeystore, store BiometricStore, password string) error {
	if c.State() != Unlocked {
		return ErrLocked
	}
	secret := []byte(password)
	defer crypto.Zero(secret)

	wrapped, err := ks.Wrap(secret)
	if err != nil {
		return err
	}
	return store.Save(wrapped)
}

// UnlockWithBiometric retrieves the wrapped secret from store, unwraps
// it via ks, and resumes as if Unlock had been called with the
// recovered password. Any Unwrap failure is treated as an invalidated
// keystore key (e.g. biometric re-enrollment): the slot is discarded
// and ErrBiometricInvalidated is returned — the caller must fall back
// to a password unlock.
func (c *Controller) UnlockWithBiometric(ks PlatformKeystore, store BiometricStore) error {
	wrapped, ok, err := store.Load()
	if err != nil {
		return err
	}
	if !ok {
		return ErrBiometricUnavailable
	}

	plaintext, err := ks.Unwrap(wrapped)
	if err != nil {
		_ = store.Clear()
		return ErrBiometricInvalidated
	}
	defer crypto.Zero(plaintext)

	return c.Unlock(string(plaintext))
}

// DiscardBiometric removes any persisted biometric slot, e.g. on
// remote wipe or explicit user opt-out.
func DiscardBiometric(store BiometricStore) error {
	return store.Clear()
}
