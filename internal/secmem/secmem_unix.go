//go:build linux || darwin

// Package secmem best-effort pins secret buffers out of swap. No other
// package in this module calls it, so the keys held by an unlocked
// session are not pinned.
package secmem

import "golang.org/x/sys/unix"

// Lock pins b's backing memory so the kernel will not swap it to disk.
// A failure here is not fatal — callers still zero the buffer on lock —
// it only means the best-effort protection did not apply.
func Lock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// Unlock releases a buffer previously pinned with Lock.
func Unlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}
