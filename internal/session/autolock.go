package session

import (
	"context"
	"time"
)

// DefaultAutoLockTimeout is the idle duration after which the
// auto-lock probe locks the session.
const DefaultAutoLockTimeout = 300 * time.Second

// ProbeInterval is the auto-lock probe's granularity: at most 10s
// between checks.
const ProbeInterval = 10 * time.Second

// AutoLocker periodically locks c if it has been idle for longer than
// timeout. It takes only an advisory read of last-activity per tick
// and defers the Lock() transition to its own short critical section,
// so the probe never holds the write lock longer than the check
// itself.
type AutoLocker struct {
	controller *Controller
	timeout    time.Duration
}

// NewAutoLocker builds a probe for controller with timeout. A
// non-positive timeout falls back to DefaultAutoLockTimeout.
func NewAutoLocker(controller *Controller, timeout time.Duration) *AutoLocker {
	if timeout <= 0 {
		timeout = DefaultAutoLockTimeout
	}
	return &AutoLocker{controller: controller, timeout: timeout}
}

// Run blocks, ticking every ProbeInterval, until ctx is cancelled.
func (a *AutoLocker) Run(ctx context.Context) {
	ticker := time.NewTicker(ProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.tick(now)
		}
	}
}

func (a *AutoLocker) tick(now time.Time) {
	if a.controller.State() != Unlocked {
		return
	}
	if a.controller.IdleFor(now) > a.timeout {
		a.controller.Lock()
	}
}
