// Package http provides HTTP handlers for vault synchronization.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/keydrop/keydrop-core/internal/models"
	handler "github.com/keydrop/keydrop-core/internal/server/handler/http"
)

type fakeSyncService struct {
	pullCalled    bool
	receivedSince int64
	pullResp      models.PullResponse
	pullErr       error
	pushCalled    bool
	receivedPush  models.PushRequest
	pushResp      models.PushResponse
	pushErr       error
}

func (f *fakeSyncService) Pull(ctx context.Context, userID string, sinceVersion int64) (models.PullResponse, error) {
	f.pullCalled = true
	f.receivedSince = sinceVersion
	return f.pullResp, f.pullErr
}

func (f *fakeSyncService) Push(ctx context.Context, userID string, req models.PushRequest) (models.PushResponse, error) {
	f.pushCalled = true
	f.receivedPush = req
	return f.pushResp, f.pushErr
}

func TestSyncHandler_Pull_BadVersion(t *testing.T) {
	h := &handler.SyncHandler{SyncService: &fakeSyncService{}}
	req := httptest.NewRequest(http.MethodGet, "/sync/pull?since_version=not-a-number", nil)
	w := httptest.NewRecorder()

	h.Pull(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSyncHandler_Pull_Success(t *testing.T) {
	want := models.PullResponse{
		CurrentVersion: 7,
		Items:          []models.SyncRecord{{ID: "s1", Version: 5, EncryptedBlob: "blob"}},
		HasMore:        false,
	}
	fake := &fakeSyncService{pullResp: want}
	h := &handler.SyncHandler{SyncService: fake}

	req := httptest.NewRequest(http.MethodGet, "/sync/pull?since_version=3", nil)
	w := httptest.NewRecorder()

	h.Pull(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if fake.receivedSince != 3 {
		t.Errorf("receivedSince = %d; want 3", fake.receivedSince)
	}

	var got models.PullResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v; want %+v", got, want)
	}
}

func TestSyncHandler_Pull_DefaultsSinceToZero(t *testing.T) {
	fake := &fakeSyncService{}
	h := &handler.SyncHandler{SyncService: fake}

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	w := httptest.NewRecorder()

	h.Pull(w, req)

	if fake.receivedSince != 0 {
		t.Errorf("receivedSince = %d; want 0", fake.receivedSince)
	}
}

func TestSyncHandler_Push_BadJSON(t *testing.T) {
	h := &handler.SyncHandler{SyncService: &fakeSyncService{}}
	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewBufferString("not-json"))
	w := httptest.NewRecorder()

	h.Push(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSyncHandler_Push_ServiceError(t *testing.T) {
	fake := &fakeSyncService{pushErr: errors.New("db down")}
	h := &handler.SyncHandler{SyncService: fake}

	body, _ := json.Marshal(models.PushRequest{BaseVersion: 3, Items: []models.SyncRecord{{ID: "s1"}}})
	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Push(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestSyncHandler_Push_Success(t *testing.T) {
	want := models.PushResponse{NewVersion: 8, HadConflict: true, Conflicts: []models.SyncRecord{{ID: "s1", Version: 6}}}
	fake := &fakeSyncService{pushResp: want}
	h := &handler.SyncHandler{SyncService: fake}

	pushReq := models.PushRequest{BaseVersion: 5, Items: []models.SyncRecord{{ID: "s1", Version: 5}}}
	body, _ := json.Marshal(pushReq)
	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Push(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusOK)
	}
	if !fake.pushCalled || !reflect.DeepEqual(fake.receivedPush, pushReq) {
		t.Errorf("receivedPush = %+v; want %+v", fake.receivedPush, pushReq)
	}

	var got models.PushResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v; want %+v", got, want)
	}
}
