package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keydrop/keydrop-core/internal/middleware"
	"github.com/keydrop/keydrop-core/internal/models"
)

// CommandService defines the remote lock/wipe command operations
// required by CommandHandler.
type CommandService interface {
	Issue(ctx context.Context, deviceID string, cmdType models.CommandType) (models.RemoteCommand, error)
	ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error)
	Ack(ctx context.Context, deviceID, commandID string) error
}

// CommandHandler handles HTTP requests for queuing, polling, and
// acknowledging remote lock/wipe commands.
type CommandHandler struct {
	CommandService CommandService
}

// Issue handles POST /devices/{deviceID}/commands — an account owner
// queuing a lock or wipe for one of their other devices.
func (h *CommandHandler) Issue(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	var req struct {
		Type models.CommandType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Type != models.CommandLock && req.Type != models.CommandWipe {
		http.Error(w, "unknown command type", http.StatusBadRequest)
		return
	}

	cmd, err := h.CommandService.Issue(r.Context(), deviceID, req.Type)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(cmd)
}

// ListPending handles GET /devices/commands — a device polling for
// commands issued against it.
func (h *CommandHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFromContext(r.Context())

	cmds, err := h.CommandService.ListPending(r.Context(), deviceID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cmds)
}

// Ack handles POST /devices/commands/{id}/ack.
func (h *CommandHandler) Ack(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.DeviceIDFromContext(r.Context())
	commandID := chi.URLParam(r, "id")

	if err := h.CommandService.Ack(r.Context(), deviceID, commandID); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
