package authtoken

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Parse for any unsignable, expired, or
// otherwise malformed access token.
var ErrInvalidToken = errors.New("authtoken: invalid token")

// Claims is the decoded payload of an access token.
type Claims struct {
	UserID    string
	DeviceID  string
	TokenID   string
	IssuedAt  int64
	ExpiresAt int64
}

// Signer issues and validates EdDSA-signed access tokens binding a
// user to one device. A distinct auth subkey derived per user proves
// the client holds the master password without ever transmitting it;
// the token is what is actually carried on the wire thereafter.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	iss  string
	ttl  time.Duration
}

// NewSigner builds a Signer. ttl is the access token lifetime
// (15 minutes is a reasonable default for a bearer-token sync API).
func NewSigner(priv ed25519.PrivateKey, issuer string, ttl time.Duration) *Signer {
	return &Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey), iss: issuer, ttl: ttl}
}

// GenerateSigningKey creates a fresh Ed25519 key pair for a Signer.
func GenerateSigningKey() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	return priv, err
}

// Issue mints a new access token for (userID, deviceID), returning the
// signed token and its expiry.
func (s *Signer) Issue(userID, deviceID string) (token string, expiresAt time.Time, err error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"iss":       s.iss,
		"sub":       userID,
		"device_id": deviceID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
		"jti":       randomJTI(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := tok.SignedString(s.priv)
	return signed, exp, err
}

// Parse validates tokenStr's signature, issuer, and expiry, returning
// its claims. Any failure collapses to ErrInvalidToken.
func (s *Signer) Parse(tokenStr string) (Claims, error) {
	keyFunc := func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodEdDSA {
			return nil, ErrInvalidToken
		}
		return s.pub, nil
	}

	tok, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, keyFunc, jwt.WithIssuer(s.iss))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	getString := func(k string) string {
		v, _ := mc[k].(string)
		return v
	}
	getInt64 := func(k string) int64 {
		switch v := mc[k].(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		default:
			return 0
		}
	}

	return Claims{
		UserID:    getString("sub"),
		DeviceID:  getString("device_id"),
		TokenID:   getString("jti"),
		IssuedAt:  getInt64("iat"),
		ExpiresAt: getInt64("exp"),
	}, nil
}

func randomJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
