package syncengine

import (
	"context"

	"github.com/keydrop/keydrop-core/internal/models"
)

// Wiper purges the local client state a wipe command removes. The
// engine only locks the session before calling it, so the vault blob,
// tokens, the biometric slot, and sync bookkeeping are all left to the
// implementation. cmd/client assembles the concrete implementation
// since those stores live outside this package.
type Wiper interface {
	Wipe() error
}

// PollCommands fetches and dispatches every command currently pending
// for this device, acknowledging each regardless of whether dispatch
// succeeded locally (an ack failure itself is a transient network
// error and bubbles up; a dispatch failure is logged by the caller via
// the returned error but the command is still acked to avoid infinite
// redelivery of a wipe/lock this client already tried to honor).
func (e *Engine) PollCommands(ctx context.Context, wiper Wiper) error {
	commands, err := e.transport.GetCommands(ctx)
	if err != nil {
		return err
	}

	var firstDispatchErr error
	for _, cmd := range commands {
		dispatchErr := e.dispatchCommand(cmd, wiper)
		if dispatchErr != nil && firstDispatchErr == nil {
			firstDispatchErr = dispatchErr
		}
		if err := e.transport.AckCommand(ctx, cmd.ID, dispatchErr == nil); err != nil {
			return err
		}
	}
	return firstDispatchErr
}

func (e *Engine) dispatchCommand(cmd models.RemoteCommand, wiper Wiper) error {
	switch cmd.Type {
	case models.CommandLock:
		e.session.Lock()
		return nil
	case models.CommandWipe:
		e.session.Lock()
		return wiper.Wipe()
	default:
		return ErrCommandUnknown
	}
}
