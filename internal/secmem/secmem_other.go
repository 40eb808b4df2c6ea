//go:build !linux && !darwin

package secmem

// Lock is a no-op on platforms without an mlock syscall.
func Lock(b []byte) error { return nil }

// Unlock is a no-op on platforms without an mlock syscall.
func Unlock(b []byte) error { return nil }
