// Package service provides authentication and synchronization business
// logic, delegating persistence to repository interfaces defined here
// and satisfied by internal/repository's PostgreSQL implementations.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/keydrop/keydrop-core/internal/authtoken"
	"github.com/keydrop/keydrop-core/internal/models"
)

// ErrInvalidCredentials is returned by Login when the login is unknown
// or the submitted auth subkey does not verify against the stored hash.
// Both cases collapse to the same error so a caller cannot probe for
// account existence.
var ErrInvalidCredentials = errors.New("service: invalid credentials")

// ErrUserExists is returned by Register when the login is taken.
var ErrUserExists = errors.New("service: user already exists")

// ErrRefreshTokenInvalid is returned by Refresh for an unknown,
// expired, or revoked refresh token.
var ErrRefreshTokenInvalid = errors.New("service: refresh token invalid")

// AuthRepository defines the persistence operations required by
// AuthService.
type AuthRepository interface {
	UserExists(ctx context.Context, login string) (bool, error)
	CreateUser(ctx context.Context, id, login, verifierHash string) error
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UpsertDevice(ctx context.Context, d models.Device) error
	SaveRefreshToken(ctx context.Context, rt models.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// AuthTokens is what Register, Login, and Refresh hand back to a
// client: a bearer access token plus a rotating opaque refresh token.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthService implements registration, login, and token refresh on top
// of an AuthRepository. It never sees a plaintext master password: the
// client submits an HKDF-derived auth subkey, preserving the
// zero-knowledge property end to end.
type AuthService struct {
	repo       AuthRepository
	signer     *authtoken.Signer
	refreshTTL time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, signer *authtoken.Signer, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, signer: signer, refreshTTL: refreshTTL}
}

// Register creates a new user bound to the given auth subkey, registers
// the requesting device, and issues an initial token pair.
func (s *AuthService) Register(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (AuthTokens, error) {
	exists, err := s.repo.UserExists(ctx, login)
	if err != nil {
		return AuthTokens{}, err
	}
	if exists {
		return AuthTokens{}, ErrUserExists
	}

	verifierHash, err := authtoken.HashVerifier(authtoken.DefaultVerifierParams, authSubkey)
	if err != nil {
		return AuthTokens{}, err
	}

	userID := uuid.NewString()
	if err := s.repo.CreateUser(ctx, userID, login, verifierHash); err != nil {
		return AuthTokens{}, err
	}

	return s.issueSession(ctx, userID, deviceID, deviceName)
}

// Login verifies authSubkey against the stored verifier and, on
// success, registers the device and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (AuthTokens, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	ok, err := authtoken.VerifyVerifier(authSubkey, user.AuthVerifierHash)
	if err != nil || !ok {
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user.ID, deviceID, deviceName)
}

// Refresh exchanges a still-valid refresh token for a fresh access
// token, rotating the refresh token in the same call (single-use
// rotation: the old token is revoked immediately).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	hash := hashRefreshToken(refreshToken)
	rt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return AuthTokens{}, ErrRefreshTokenInvalid
	}
	if rt.Revoked || rt.ExpiresAt < time.Now().Unix() {
		return AuthTokens{}, ErrRefreshTokenInvalid
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return AuthTokens{}, err
	}

	return s.issueSession(ctx, rt.UserID, rt.DeviceID, "")
}

// issueSession mints a new access+refresh token pair for an
// already-authenticated user and device, registering the device if
// deviceName is non-empty (fresh register/login) or leaving it alone on
// a bare refresh.
func (s *AuthService) issueSession(ctx context.Context, userID, deviceID, deviceName string) (AuthTokens, error) {
	if deviceName != "" {
		if err := s.repo.UpsertDevice(ctx, models.Device{
			ID:        deviceID,
			UserID:    userID,
			Name:      deviceName,
			CreatedAt: time.Now().Unix(),
		}); err != nil {
			return AuthTokens{}, err
		}
	}

	access, expiresAt, err := s.signer.Issue(userID, deviceID)
	if err != nil {
		return AuthTokens{}, err
	}

	refresh, err := generateOpaqueToken()
	if err != nil {
		return AuthTokens{}, err
	}
	refreshExpiresAt := time.Now().Add(s.refreshTTL).Unix()
	if err := s.repo.SaveRefreshToken(ctx, models.RefreshToken{
		TokenHash: hashRefreshToken(refresh),
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
	}, nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
