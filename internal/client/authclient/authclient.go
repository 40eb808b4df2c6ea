// Package authclient is the client side of the sync server's bearer
// authentication endpoints: register, login, and refresh-token
// rotation.
package authclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Tokens is an access/refresh pair returned by Register, Login, or
// Refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Client talks to a sync server's /auth endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New builds a Client. A nil httpClient gets a 30-second-timeout default.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Register creates a new account and registers deviceID as its first
// device.
func (c *Client) Register(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (Tokens, error) {
	return c.credentialsRequest(ctx, "/auth/register", login, authSubkey, deviceID, deviceName)
}

// Login authenticates an existing account from a new or returning device.
func (c *Client) Login(ctx context.Context, login string, authSubkey []byte, deviceID, deviceName string) (Tokens, error) {
	return c.credentialsRequest(ctx, "/auth/login", login, authSubkey, deviceID, deviceName)
}

// Refresh rotates a refresh token for a fresh access/refresh pair. The
// token passed in is invalidated whether or not this call succeeds in
// returning a new one — the server performs single-use rotation.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	body, _ := json.Marshal(map[string]string{"refresh_token": refreshToken})
	return c.do(ctx, "/auth/refresh", body)
}

func (c *Client) credentialsRequest(ctx context.Context, path, login string, authSubkey []byte, deviceID, deviceName string) (Tokens, error) {
	body, _ := json.Marshal(map[string]string{
		"login":       login,
		"auth_subkey": base64.StdEncoding.EncodeToString(authSubkey),
		"device_id":   deviceID,
		"device_name": deviceName,
	})
	return c.do(ctx, path, body)
}

func (c *Client) do(ctx context.Context, path string, body []byte) (Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Tokens{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Tokens{}, fmt.Errorf("authclient: %s: server returned %d", path, resp.StatusCode)
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, ExpiresIn: out.ExpiresIn}, nil
}
