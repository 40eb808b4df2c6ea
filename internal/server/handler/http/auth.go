// Package http provides HTTP handlers for user registration, login,
// token refresh, and vault synchronization.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/keydrop/keydrop-core/internal/service"
)

// AuthService defines the authentication operations required by
// AuthHandler.
type AuthService interface {
	Register(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (service.AuthTokens, error)
	Login(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (service.AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (service.AuthTokens, error)
}

// AuthHandler handles HTTP requests for account registration, login,
// and refresh-token rotation.
type AuthHandler struct {
	AuthService AuthService
}

type credentialsRequest struct {
	Login      string `json:"login"`
	AuthSubkey string `json:"auth_subkey"` // base64
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register handles POST /auth/register. The client never transmits
// the master password or vault key, only the HKDF-derived auth
// subkey (base64-encoded).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, subkey, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	tokens, err := h.AuthService.Register(r.Context(), req.Login, subkey, req.DeviceID, req.DeviceName)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeTokens(w, tokens)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, subkey, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	tokens, err := h.AuthService.Login(r.Context(), req.Login, subkey, req.DeviceID, req.DeviceName)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeTokens(w, tokens)
}

// Refresh handles POST /auth/refresh, rotating a single-use refresh
// token for a fresh access/refresh pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeTokens(w, tokens)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, []byte, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.DeviceID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return credentialsRequest{}, nil, false
	}

	subkey, err := base64.StdEncoding.DecodeString(req.AuthSubkey)
	if err != nil || len(subkey) == 0 {
		http.Error(w, "invalid auth_subkey", http.StatusBadRequest)
		return credentialsRequest{}, nil, false
	}
	return req, subkey, true
}

func writeTokens(w http.ResponseWriter, tokens service.AuthTokens) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		http.Error(w, "user already exists", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, service.ErrRefreshTokenInvalid):
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
