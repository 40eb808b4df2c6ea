package storage

import (
	"context"
	"testing"
	"time"

	"github.com/keydrop/keydrop-core/internal/client/authclient"
)

func TestBlobStore_NotExistThenRoundTrip(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}

	if exists, err := store.Exists(); err != nil || exists {
		t.Fatalf("Exists = %v, %v; want false, nil", exists, err)
	}

	if err := store.Save([]byte("blob-bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if exists, err := store.Exists(); err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "blob-bytes" {
		t.Errorf("Load = %q; want %q", got, "blob-bytes")
	}

	if err := store.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if exists, _ := store.Exists(); exists {
		t.Error("expected blob to be gone after Wipe")
	}
}

func TestDeviceStateStore_LoadMissingReturnsZeroValue(t *testing.T) {
	store, err := NewDeviceStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDeviceStateStore: %v", err)
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.IsRegistered() {
		t.Errorf("expected zero-value state, got %+v", state)
	}
}

func TestDeviceStateStore_SaveAndLoad(t *testing.T) {
	store, err := NewDeviceStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDeviceStateStore: %v", err)
	}

	want := DeviceState{DeviceID: "d1", DeviceName: "laptop", Login: "alice", AccessToken: "a", RefreshToken: "r"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v; want %+v", got, want)
	}
}

func TestDeviceStateStore_Clear(t *testing.T) {
	store, err := NewDeviceStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDeviceStateStore: %v", err)
	}
	_ = store.Save(DeviceState{DeviceID: "d1", RefreshToken: "r"})

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	state, _ := store.Load()
	if state.IsRegistered() {
		t.Errorf("expected cleared state, got %+v", state)
	}
}

func TestTokenManager_ServesCachedTokenWithoutRefreshing(t *testing.T) {
	store, _ := NewDeviceStateStore(t.TempDir())
	_ = store.Save(DeviceState{
		DeviceID:             "d1",
		AccessToken:          "still-valid",
		RefreshToken:         "r1",
		AccessTokenExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	mgr, err := NewTokenManager(store, authclient.New("http://unused.invalid", nil))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := mgr.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if token != "still-valid" {
		t.Errorf("token = %q; want %q", token, "still-valid")
	}
}

func TestTokenManager_NoSessionErrors(t *testing.T) {
	store, _ := NewDeviceStateStore(t.TempDir())
	mgr, err := NewTokenManager(store, authclient.New("http://unused.invalid", nil))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	if _, err := mgr.AccessToken(context.Background()); err == nil {
		t.Error("expected an error when no session has been established")
	}
}

func TestTokenManager_SetTokensPersists(t *testing.T) {
	store, _ := NewDeviceStateStore(t.TempDir())
	mgr, err := NewTokenManager(store, authclient.New("http://unused.invalid", nil))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	if err := mgr.SetTokens("d1", "laptop", "alice", authclient.Tokens{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}

	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.AccessToken != "a" || reloaded.DeviceID != "d1" {
		t.Errorf("unexpected persisted state: %+v", reloaded)
	}
}
