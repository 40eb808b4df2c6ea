package service

import (
	"context"

	"github.com/keydrop/keydrop-core/internal/models"
)

// SyncRepository defines the persistence operations needed by
// SyncService. The server stores only opaque per-item ciphertext plus
// versioning metadata.
type SyncRepository interface {
	GetMaxVersion(ctx context.Context, userID string) (int64, error)
	PullSince(ctx context.Context, userID string, sinceVersion int64, limit int) ([]models.SyncRecord, bool, error)
	GetRecord(ctx context.Context, userID, id string) (*models.SyncRecord, error)
	PushUpsert(ctx context.Context, userID string, items []models.SyncRecord) (newVersion int64, conflicts []models.SyncRecord, err error)
}

// SyncService implements the server side of versioned delta sync:
// paginated pull and conflict-aware push.
type SyncService struct {
	repo     SyncRepository
	pageSize int
}

// NewSyncService constructs a SyncService. pageSize caps how many
// records one Pull call returns.
func NewSyncService(repo SyncRepository, pageSize int) *SyncService {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &SyncService{repo: repo, pageSize: pageSize}
}

// Pull returns every record newer than sinceVersion, up to the
// configured page size.
func (s *SyncService) Pull(ctx context.Context, userID string, sinceVersion int64) (models.PullResponse, error) {
	current, err := s.repo.GetMaxVersion(ctx, userID)
	if err != nil {
		return models.PullResponse{}, err
	}

	items, hasMore, err := s.repo.PullSince(ctx, userID, sinceVersion, s.pageSize)
	if err != nil {
		return models.PullResponse{}, err
	}

	return models.PullResponse{CurrentVersion: current, Items: items, HasMore: hasMore}, nil
}

// Push integrates a client's batch of locally-pending records,
// returning the conflicts (if any) the client must re-merge and
// resubmit.
func (s *SyncService) Push(ctx context.Context, userID string, req models.PushRequest) (models.PushResponse, error) {
	newVersion, conflicts, err := s.repo.PushUpsert(ctx, userID, req.Items)
	if err != nil {
		return models.PushResponse{}, err
	}
	return models.PushResponse{
		NewVersion:  newVersion,
		HadConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

// GetByID fetches a single sync record by id for the given user.
func (s *SyncService) GetByID(ctx context.Context, userID, id string) (*models.SyncRecord, error) {
	return s.repo.GetRecord(ctx, userID, id)
}
