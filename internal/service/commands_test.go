package service

import (
	"context"
	"testing"

	"github.com/keydrop/keydrop-core/internal/models"
)

type mockCommandRepo struct {
	created []models.RemoteCommand
	pending map[string][]models.RemoteCommand
	acked   []string
}

func newMockCommandRepo() *mockCommandRepo {
	return &mockCommandRepo{pending: map[string][]models.RemoteCommand{}}
}

func (m *mockCommandRepo) Create(ctx context.Context, cmd models.RemoteCommand) error {
	m.created = append(m.created, cmd)
	m.pending[cmd.DeviceID] = append(m.pending[cmd.DeviceID], cmd)
	return nil
}

func (m *mockCommandRepo) ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error) {
	return m.pending[deviceID], nil
}

func (m *mockCommandRepo) Ack(ctx context.Context, deviceID, commandID string) error {
	m.acked = append(m.acked, commandID)
	return nil
}

func TestCommandService_IssueAndListPending(t *testing.T) {
	repo := newMockCommandRepo()
	svc := NewCommandService(repo, nil)

	cmd, err := svc.Issue(context.Background(), "device-1", models.CommandLock)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if cmd.Type != models.CommandLock {
		t.Errorf("expected lock command, got %+v", cmd)
	}

	pending, err := svc.ListPending(context.Background(), "device-1")
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(pending))
	}
}

type mockPublisher struct {
	notified []string
}

func (m *mockPublisher) Notify(deviceID string) {
	m.notified = append(m.notified, deviceID)
}

func TestCommandService_Issue_NotifiesPublisher(t *testing.T) {
	repo := newMockCommandRepo()
	pub := &mockPublisher{}
	svc := NewCommandService(repo, pub)

	if _, err := svc.Issue(context.Background(), "device-1", models.CommandWipe); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(pub.notified) != 1 || pub.notified[0] != "device-1" {
		t.Errorf("expected publisher to be notified for device-1, got %+v", pub.notified)
	}
}

func TestCommandService_Ack(t *testing.T) {
	repo := newMockCommandRepo()
	svc := NewCommandService(repo, nil)

	if err := svc.Ack(context.Background(), "device-1", "cmd-1"); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if len(repo.acked) != 1 || repo.acked[0] != "cmd-1" {
		t.Errorf("expected ack to be recorded, got %+v", repo.acked)
	}
}
