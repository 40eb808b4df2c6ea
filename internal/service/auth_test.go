package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keydrop/keydrop-core/internal/authtoken"
	"github.com/keydrop/keydrop-core/internal/models"
)

type mockAuthRepo struct {
	users         map[string]*models.User
	devices       []models.Device
	refreshTokens map[string]models.RefreshToken
	createErr     error
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, refreshTokens: map[string]models.RefreshToken{}}
}

func (m *mockAuthRepo) UserExists(ctx context.Context, login string) (bool, error) {
	_, ok := m.users[login]
	return ok, nil
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, id, login, verifierHash string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[login] = &models.User{ID: id, Login: login, AuthVerifierHash: verifierHash}
	return nil
}

func (m *mockAuthRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	u, ok := m.users[login]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (m *mockAuthRepo) UpsertDevice(ctx context.Context, d models.Device) error {
	m.devices = append(m.devices, d)
	return nil
}

func (m *mockAuthRepo) SaveRefreshToken(ctx context.Context, rt models.RefreshToken) error {
	m.refreshTokens[rt.TokenHash] = rt
	return nil
}

func (m *mockAuthRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[tokenHash]
	if !ok {
		return nil, errors.New("not found")
	}
	return &rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	rt := m.refreshTokens[tokenHash]
	rt.Revoked = true
	m.refreshTokens[tokenHash] = rt
	return nil
}

func newTestSigner(t *testing.T) *authtoken.Signer {
	t.Helper()
	priv, err := authtoken.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey: %v", err)
	}
	return authtoken.NewSigner(priv, "keydrop-sync", 15*time.Minute)
}

func TestRegister_Success(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	tokens, err := svc.Register(context.Background(), "bob", []byte("auth-subkey"), "device-1", "bob's laptop")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Error("expected non-empty tokens")
	}
	if len(repo.devices) != 1 {
		t.Errorf("expected device to be registered, got %d", len(repo.devices))
	}
}

func TestRegister_DuplicateLogin(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	if _, err := svc.Register(context.Background(), "bob", []byte("k"), "d1", "laptop"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", []byte("k"), "d2", "phone"); err != ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)
	subkey := []byte("auth-subkey")

	if _, err := svc.Register(context.Background(), "bob", subkey, "d1", "laptop"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tokens, err := svc.Login(context.Background(), "bob", subkey, "d2", "phone")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
}

func TestLogin_WrongSubkey(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	if _, err := svc.Register(context.Background(), "bob", []byte("real-subkey"), "d1", "laptop"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "bob", []byte("wrong-subkey"), "d1", "laptop"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	if _, err := svc.Login(context.Background(), "ghost", []byte("k"), "d1", "laptop"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefresh_Success(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	tokens, err := svc.Register(context.Background(), "bob", []byte("k"), "d1", "laptop")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a fresh access token")
	}

	if _, err := svc.Refresh(context.Background(), tokens.RefreshToken); err != ErrRefreshTokenInvalid {
		t.Fatalf("expected reused refresh token to be rejected, got %v", err)
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, newTestSigner(t), 30*24*time.Hour)

	if _, err := svc.Refresh(context.Background(), "not-a-real-token"); err != ErrRefreshTokenInvalid {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
}
