package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keydrop/keydrop-core/internal/models"
)

// CommandRepository defines the persistence operations needed by
// CommandService.
type CommandRepository interface {
	Create(ctx context.Context, cmd models.RemoteCommand) error
	ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error)
	Ack(ctx context.Context, deviceID, commandID string) error
}

// CommandPublisher notifies a device that a command is waiting, so it
// can re-poll immediately instead of on its next interval. Delivery is
// best-effort; a nil publisher (or an implementation that drops every
// notice) only affects latency, never correctness.
type CommandPublisher interface {
	Notify(deviceID string)
}

// CommandService lets an account owner queue a lock or wipe command for
// one of their devices, and lets that device poll and acknowledge it.
type CommandService struct {
	repo      CommandRepository
	publisher CommandPublisher
}

// NewCommandService constructs a CommandService. publisher may be nil
// to disable push notification entirely (polling-only delivery).
func NewCommandService(repo CommandRepository, publisher CommandPublisher) *CommandService {
	return &CommandService{repo: repo, publisher: publisher}
}

// Issue queues a new command for deviceID and, if a publisher is
// configured, notifies it immediately.
func (s *CommandService) Issue(ctx context.Context, deviceID string, cmdType models.CommandType) (models.RemoteCommand, error) {
	cmd := models.RemoteCommand{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		Type:      cmdType,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.Create(ctx, cmd); err != nil {
		return models.RemoteCommand{}, err
	}
	if s.publisher != nil {
		s.publisher.Notify(deviceID)
	}
	return cmd, nil
}

// ListPending returns every un-acked command for a device.
func (s *CommandService) ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error) {
	return s.repo.ListPending(ctx, deviceID)
}

// Ack records delivery of a command. Acking twice is a no-op, so a
// redelivered ack from a client retrying after a dropped response
// never errors.
func (s *CommandService) Ack(ctx context.Context, deviceID, commandID string) error {
	return s.repo.Ack(ctx, deviceID, commandID)
}
