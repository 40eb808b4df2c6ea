// Package storage implements local, on-disk persistence for the CLI
// client: the encrypted vault blob, and the device's own identity and
// session tokens.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/keydrop/keydrop-core/internal/client/authclient"
)

const (
	vaultFileName  = "vault.blob"
	deviceFileName = "device.json"
)

// BlobStore implements vault.Store by persisting the encrypted blob to
// a single file under dir.
type BlobStore struct {
	path string
}

// NewBlobStore builds a BlobStore rooted at dir (created if missing).
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &BlobStore{path: filepath.Join(dir, vaultFileName)}, nil
}

// Load reads the persisted blob.
func (s *BlobStore) Load() ([]byte, error) {
	return os.ReadFile(s.path)
}

// Save writes blob atomically: write to a temp file, then rename, so a
// crash mid-write never leaves a corrupt vault on disk.
func (s *BlobStore) Save(blob []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Exists reports whether a blob has already been persisted.
func (s *BlobStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Wipe deletes the persisted blob. Implements the interface
// vault.Controller.Wipe() looks for on its Store to also purge
// on-disk state, not just in-memory key material.
func (s *BlobStore) Wipe() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeviceStateStore persists DeviceState to a JSON file under dir.
type DeviceStateStore struct {
	path string
}

// NewDeviceStateStore builds a DeviceStateStore rooted at dir.
func NewDeviceStateStore(dir string) (*DeviceStateStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &DeviceStateStore{path: filepath.Join(dir, deviceFileName)}, nil
}

// Load reads the persisted DeviceState, returning a zero value if none
// has been saved yet.
func (s *DeviceStateStore) Load() (DeviceState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DeviceState{}, nil
		}
		return DeviceState{}, err
	}
	var state DeviceState
	if err := json.Unmarshal(data, &state); err != nil {
		return DeviceState{}, err
	}
	return state, nil
}

// Save persists state atomically.
func (s *DeviceStateStore) Save(state DeviceState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the persisted device state entirely, e.g. on remote wipe.
func (s *DeviceStateStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// accessTokenSkew is how far ahead of actual expiry TokenManager
// proactively refreshes, so a request never races a token that
// expires mid-flight.
const accessTokenSkew = 30 * time.Second

// TokenManager implements syncengine.TokenSource: it serves the cached
// access token until it is near expiry, then transparently rotates the
// refresh token for a new pair and persists the result.
type TokenManager struct {
	mu    sync.Mutex
	store *DeviceStateStore
	auth  *authclient.Client
	state DeviceState
}

// NewTokenManager loads any previously persisted device state.
func NewTokenManager(store *DeviceStateStore, auth *authclient.Client) (*TokenManager, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &TokenManager{store: store, auth: auth, state: state}, nil
}

// State returns a copy of the currently cached device state.
func (m *TokenManager) State() DeviceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetTokens overwrites the cached tokens after a Register or Login
// call and persists them.
func (m *TokenManager) SetTokens(deviceID, deviceName, login string, tokens authclient.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = DeviceState{
		DeviceID:             deviceID,
		DeviceName:           deviceName,
		Login:                login,
		AccessToken:          tokens.AccessToken,
		RefreshToken:         tokens.RefreshToken,
		AccessTokenExpiresAt: time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second).Unix(),
	}
	return m.store.Save(m.state)
}

// AccessToken returns a still-valid access token, refreshing first if
// the cached one is at or past accessTokenSkew from expiry.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.AccessToken == "" {
		return "", fmt.Errorf("storage: no device session; register or log in first")
	}

	expiry := time.Unix(m.state.AccessTokenExpiresAt, 0)
	if time.Now().Add(accessTokenSkew).Before(expiry) {
		return m.state.AccessToken, nil
	}

	tokens, err := m.auth.Refresh(ctx, m.state.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("storage: refreshing access token: %w", err)
	}
	m.state.AccessToken = tokens.AccessToken
	m.state.RefreshToken = tokens.RefreshToken
	m.state.AccessTokenExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second).Unix()
	if err := m.store.Save(m.state); err != nil {
		return "", err
	}
	return m.state.AccessToken, nil
}
