package notify

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// CommandSubscriber listens for wakeup notices on a single device's
// subject and signals wake whenever one arrives. The channel is
// buffered by one slot; a pending signal is never duplicated.
type CommandSubscriber struct {
	conn *nats.Conn
	sub  *nats.Subscription
	wake chan struct{}
}

// NewCommandSubscriber connects to url and subscribes deviceID's
// subject. An empty url returns a subscriber whose Wake channel never
// fires; the caller's own poll-interval ticker remains the sole
// trigger.
func NewCommandSubscriber(url, deviceID string) (*CommandSubscriber, error) {
	wake := make(chan struct{}, 1)
	if url == "" {
		return &CommandSubscriber{wake: wake}, nil
	}

	conn, err := nats.Connect(url, nats.Name("keydrop-sync-client-"+deviceID))
	if err != nil {
		return nil, fmt.Errorf("notify: connect: %w", err)
	}

	sub, err := conn.Subscribe(subject(deviceID), func(*nats.Msg) {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: subscribe: %w", err)
	}

	return &CommandSubscriber{conn: conn, sub: sub, wake: wake}, nil
}

// Wake fires whenever the server publishes a command notice for this
// device.
func (s *CommandSubscriber) Wake() <-chan struct{} {
	return s.wake
}

// Close releases the underlying NATS subscription and connection, if any.
func (s *CommandSubscriber) Close() {
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
