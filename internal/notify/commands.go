// Package notify provides best-effort push delivery of remote
// lock/wipe commands over NATS, so a connected device learns about a
// command immediately instead of waiting for its next poll interval.
// Delivery is purely a latency optimization: service.CommandService
// remains the source of truth and a device that never receives a push
// still picks the command up on its next ListPending poll.
package notify

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// CommandPublisher publishes a wakeup notice for a device's pending
// command queue.
type CommandPublisher struct {
	conn *nats.Conn
}

// NewCommandPublisher connects to the given NATS URL. An empty url
// disables push delivery: the returned Publisher's Notify becomes a
// no-op and devices fall back to polling only.
func NewCommandPublisher(url string) (*CommandPublisher, error) {
	if url == "" {
		return &CommandPublisher{}, nil
	}
	conn, err := nats.Connect(url, nats.Name("keydrop-sync-server"))
	if err != nil {
		return nil, fmt.Errorf("notify: connect: %w", err)
	}
	return &CommandPublisher{conn: conn}, nil
}

// Notify publishes an empty wakeup message on the device's command
// subject. Subscribers treat the payload as a signal to re-poll, not
// as the command itself.
func (p *CommandPublisher) Notify(deviceID string) {
	if p.conn == nil {
		return
	}
	_ = p.conn.Publish(subject(deviceID), nil)
}

// Close releases the underlying NATS connection, if any.
func (p *CommandPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func subject(deviceID string) string {
	return "keydrop.commands." + deviceID
}
