// Package syncengine drives the client-side half of versioned delta
// sync: pulling and applying server records, merging conflicts with
// field-level last-write-wins, batching local edits into pushes, and
// polling/dispatching remote lock and wipe commands.
package syncengine

import "errors"

// ErrSyncConflictUnresolved is surfaced to the UI when a push still
// conflicts after the maximum number of merge-and-retry cycles.
var ErrSyncConflictUnresolved = errors.New("syncengine: conflict unresolved after retries")

// ErrNetworkUnavailable wraps the last transient transport error once
// every retry attempt in a cycle has been exhausted.
var ErrNetworkUnavailable = errors.New("syncengine: network unavailable")

// ErrCommandUnknown is returned when a remote command names a type the
// client does not recognize.
var ErrCommandUnknown = errors.New("syncengine: unknown command type")
