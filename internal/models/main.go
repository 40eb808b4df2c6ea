// Package models defines the core data structures shared between the
// sync server's repository, service, and HTTP handler layers.
package models

// User represents a registered account. The server never sees the
// master password or vault key: AuthVerifierHash is an Argon2id hash
// of the auth subkey the client derives via HKDF, so a server
// compromise cannot recover the vault key.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Login is the username chosen at registration.
	Login string
	// AuthVerifierHash is the Argon2id-encoded hash of the client's
	// auth subkey, in the form argon2id$m=...,t=...,p=...$salt$hash.
	AuthVerifierHash string
}

// Device represents one client installation belonging to a User. A
// device id scopes sync state, remote commands, and the optional NATS
// push subject.
type Device struct {
	// ID is the unique identifier for the device.
	ID string
	// UserID references the owning User.
	UserID string
	// Name is a user-supplied label ("Alice's laptop").
	Name string
	// CreatedAt is the Unix-seconds registration time.
	CreatedAt int64
}

// RefreshToken is an opaque, long-lived credential exchanged for a new
// access token. Only its SHA-256 hash is persisted; the plaintext
// token is returned to the client exactly once, at issuance.
type RefreshToken struct {
	// TokenHash is SHA-256(plaintext token), hex-encoded.
	TokenHash string
	UserID    string
	DeviceID  string
	// ExpiresAt is the Unix-seconds expiry.
	ExpiresAt int64
	Revoked   bool
}
