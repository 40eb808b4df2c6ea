package session

import (
	"sync"
	"time"

	"github.com/keydrop/keydrop-core/internal/vault"
)

// State is the coarse session state.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Controller is the session controller: it owns the
// locked/unlocked transitions around a vault.Controller, tracks
// last-activity for the auto-lock probe, and hosts the optional
// biometric slot. Its mutex guards only the session's own fields;
// calls into the vault.Controller are serialized by that controller's
// own mutex.
type Controller struct {
	mu sync.Mutex

	vault *vault.Controller
	state State

	since        time.Time
	lastActivity time.Time
}

// NewController wraps v with session lifecycle tracking.
func NewController(v *vault.Controller) *Controller {
	return &Controller{vault: v, state: Locked}
}

// State reports the current coarse state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastActivity reports the timestamp of the most recent unlocked
// operation, valid only while State() == Unlocked.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// Vault exposes the underlying vault controller for operations this
// package does not wrap directly (e.g. the sync engine applying pulled
// records). Callers MUST check State() == Unlocked first.
func (c *Controller) Vault() *vault.Controller {
	return c.vault
}

// Create initializes a brand-new vault and transitions to Unlocked.
func (c *Controller) Create(password string) error {
	if err := c.vault.Create(password); err != nil {
		return err
	}
	c.transitionUnlocked()
	return nil
}

// Unlock derives keys from password, decrypts the persisted vault, and
// transitions to Unlocked on success.
func (c *Controller) Unlock(password string) error {
	if err := c.vault.Unlock(password); err != nil {
		return err
	}
	c.transitionUnlocked()
	return nil
}

// Lock zeroizes the vault key and transitions to Locked. Safe to call
// from the user, the auto-lock timer, or a remote command handler.
func (c *Controller) Lock() {
	c.vault.Lock()
	c.mu.Lock()
	c.state = Locked
	c.mu.Unlock()
}

// Touch records activity; it is a no-op while Locked. Create and
// Unlock set the activity time themselves; callers driving vault
// operations through Vault() should call Touch for each of them.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Unlocked {
		c.lastActivity = time.Now()
	}
}

func (c *Controller) transitionUnlocked() {
	c.mu.Lock()
	now := time.Now()
	c.state = Unlocked
	c.since = now
	c.lastActivity = now
	c.mu.Unlock()
}

// IdleFor reports how long the session has been unlocked without
// activity. Returns 0 while Locked.
func (c *Controller) IdleFor(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Unlocked {
		return 0
	}
	return now.Sub(c.lastActivity)
}
