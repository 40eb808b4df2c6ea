package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/keydrop/keydrop-core/internal/middleware"
	"github.com/keydrop/keydrop-core/internal/models"
)

// SyncService defines the server side of versioned delta sync
// required by SyncHandler.
type SyncService interface {
	Pull(ctx context.Context, userID string, sinceVersion int64) (models.PullResponse, error)
	Push(ctx context.Context, userID string, req models.PushRequest) (models.PushResponse, error)
}

// SyncHandler handles HTTP requests for vault synchronization.
type SyncHandler struct {
	SyncService SyncService
}

// Pull handles GET /sync/pull?since_version=N.
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	since, err := parseSinceVersion(r.URL.Query().Get("since_version"))
	if err != nil {
		http.Error(w, "invalid since_version", http.StatusBadRequest)
		return
	}

	resp, err := h.SyncService.Pull(r.Context(), userID, since)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Push handles POST /sync/push.
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	resp, err := h.SyncService.Push(r.Context(), userID, req)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func parseSinceVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
