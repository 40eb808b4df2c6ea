package syncengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/keydrop/keydrop-core/internal/models"
	"github.com/keydrop/keydrop-core/internal/session"
	"github.com/keydrop/keydrop-core/internal/vault"
)

type memStore struct {
	mu   sync.Mutex
	data []byte
}

func (s *memStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, vault.ErrNotFound
	}
	return s.data, nil
}

func (s *memStore) Save(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = blob
	return nil
}

func (s *memStore) Exists() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil, nil
}

type staticTokenSource struct{ token string }

func (s staticTokenSource) AccessToken(ctx context.Context) (string, error) {
	return s.token, nil
}

func newTestSession(t *testing.T) *session.Controller {
	t.Helper()
	c := vault.NewController(&memStore{})
	sess := session.NewController(c)
	if err := sess.Create("correct horse battery staple"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sess
}

// fakeServer is a minimal in-memory sync server used only to drive the
// engine through one pull+push cycle; it does not implement conflict
// detection beyond a trivial version bump.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	var nextVersion int64
	var stored []models.SyncRecord

	mux := http.NewServeMux()
	mux.HandleFunc("/sync/pull", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.PullResponse{CurrentVersion: nextVersion, Items: nil, HasMore: false})
	})
	mux.HandleFunc("/sync/push", func(w http.ResponseWriter, r *http.Request) {
		var req models.PushRequest
		json.NewDecoder(r.Body).Decode(&req)
		nextVersion++
		for _, item := range req.Items {
			item.Version = nextVersion
			stored = append(stored, item)
		}
		json.NewEncoder(w).Encode(models.PushResponse{NewVersion: nextVersion, HadConflict: false})
	})
	mux.HandleFunc("/devices/commands", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.RemoteCommand{})
	})
	return httptest.NewServer(mux)
}

func TestEngine_SyncPushesLocalEdits(t *testing.T) {
	sess := newTestSession(t)
	item, err := sess.Vault().Add(vault.VaultItem{Name: "n", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	srv := fakeServer(t)
	defer srv.Close()

	transport := NewTransport(srv.URL, staticTokenSource{"tok"}, nil)
	engine := New(sess, transport, "device-1")

	if err := engine.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, err := sess.Vault().Get(item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.PendingSync {
		t.Error("expected PendingSync cleared after successful push")
	}
	if got.SyncVersion != 1 {
		t.Errorf("expected SyncVersion 1, got %d", got.SyncVersion)
	}
}

func TestEngine_SyncNoOpWhenNothingPending(t *testing.T) {
	sess := newTestSession(t)
	srv := fakeServer(t)
	defer srv.Close()

	transport := NewTransport(srv.URL, staticTokenSource{"tok"}, nil)
	engine := New(sess, transport, "device-1")

	if err := engine.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

type fakeWiper struct{ wiped bool }

func (w *fakeWiper) Wipe() error {
	w.wiped = true
	return nil
}

func TestPollCommands_DispatchesWipeAndLocksSession(t *testing.T) {
	sess := newTestSession(t)

	var commands []models.RemoteCommand
	var acked []string
	mux := http.NewServeMux()
	mux.HandleFunc("/devices/commands", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(commands)
	})
	mux.HandleFunc("/devices/commands/", func(w http.ResponseWriter, r *http.Request) {
		acked = append(acked, r.URL.Path)
		json.NewEncoder(w).Encode(struct{}{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	commands = []models.RemoteCommand{{ID: "cmd-1", Type: models.CommandWipe, CreatedAt: 1}}

	transport := NewTransport(srv.URL, staticTokenSource{"tok"}, nil)
	engine := New(sess, transport, "device-1")
	wiper := &fakeWiper{}

	if err := engine.PollCommands(context.Background(), wiper); err != nil {
		t.Fatalf("PollCommands: %v", err)
	}
	if !wiper.wiped {
		t.Error("expected wipe to be dispatched")
	}
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
	if sess.State() != session.Locked {
		t.Error("expected wipe to also lock the session")
	}
}
