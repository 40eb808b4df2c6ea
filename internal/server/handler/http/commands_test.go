package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/keydrop/keydrop-core/internal/models"
)

type fakeCommandService struct {
	issued     models.RemoteCommand
	issueErr   error
	pending    []models.RemoteCommand
	pendingErr error
	ackErr     error
	ackedID    string
}

func (f *fakeCommandService) Issue(ctx context.Context, deviceID string, cmdType models.CommandType) (models.RemoteCommand, error) {
	return f.issued, f.issueErr
}

func (f *fakeCommandService) ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error) {
	return f.pending, f.pendingErr
}

func (f *fakeCommandService) Ack(ctx context.Context, deviceID, commandID string) error {
	f.ackedID = commandID
	return f.ackErr
}

func TestCommandHandler_Issue_Success(t *testing.T) {
	fake := &fakeCommandService{issued: models.RemoteCommand{ID: "c1", Type: models.CommandLock}}
	h := &CommandHandler{CommandService: fake}

	r := chi.NewRouter()
	r.Post("/{deviceID}/commands", h.Issue)

	req := httptest.NewRequest("POST", "/device-1/commands", strings.NewReader(`{"type":"lock"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d, body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func TestCommandHandler_Issue_UnknownType(t *testing.T) {
	h := &CommandHandler{CommandService: &fakeCommandService{}}
	r := chi.NewRouter()
	r.Post("/{deviceID}/commands", h.Issue)

	req := httptest.NewRequest("POST", "/device-1/commands", strings.NewReader(`{"type":"reboot"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCommandHandler_ListPending(t *testing.T) {
	fake := &fakeCommandService{pending: []models.RemoteCommand{{ID: "c1", Type: models.CommandWipe}}}
	h := &CommandHandler{CommandService: fake}

	req := httptest.NewRequest("GET", "/devices/commands", nil)
	rec := httptest.NewRecorder()
	h.ListPending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
}

func TestCommandHandler_Ack(t *testing.T) {
	fake := &fakeCommandService{}
	h := &CommandHandler{CommandService: fake}

	r := chi.NewRouter()
	r.Post("/commands/{id}/ack", h.Ack)

	req := httptest.NewRequest("POST", "/commands/cmd-42/ack", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusNoContent)
	}
	if fake.ackedID != "cmd-42" {
		t.Errorf("ackedID = %q; want cmd-42", fake.ackedID)
	}
}
