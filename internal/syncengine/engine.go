package syncengine

import (
	"context"
	"encoding/base64"

	"github.com/keydrop/keydrop-core/internal/crypto"
	"github.com/keydrop/keydrop-core/internal/models"
	"github.com/keydrop/keydrop-core/internal/session"
	"github.com/keydrop/keydrop-core/internal/vault"
)

// maxMergeCycles bounds how many times a push is re-merged and
// resubmitted against fresh conflicts before giving up.
const maxMergeCycles = 3

// pullPageSize caps how many records one pull request returns.
const pullPageSize = 200

// Engine drives pull/push/conflict-merge for one vault against one
// server. It calls the vault.Controller directly; each of those calls
// takes the vault's own mutex, so applying a pulled record never
// interleaves with a local edit at the byte level. The Session
// Controller's mutex is not taken.
type Engine struct {
	session   *session.Controller
	transport *Transport
	deviceID  string
}

// New builds an Engine over an unlocked-or-locked session; Sync fails
// with vault.ErrLocked if the vault is not unlocked when called.
func New(sess *session.Controller, transport *Transport, deviceID string) *Engine {
	return &Engine{session: sess, transport: transport, deviceID: deviceID}
}

// Sync runs one full synchronization cycle: pull to the head, fold in
// local edits, push, and resolve conflicts by re-merging up to
// maxMergeCycles times.
func (e *Engine) Sync(ctx context.Context) error {
	v := e.session.Vault()

	if err := e.pullAll(ctx, v); err != nil {
		return err
	}

	for cycle := 0; cycle < maxMergeCycles; cycle++ {
		pending, err := e.collectPending(v)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		baseVersion, err := v.LastSyncVersion()
		if err != nil {
			return err
		}

		records := make([]models.SyncRecord, 0, len(pending))
		for _, item := range pending {
			rec, err := e.encodeRecord(v, item)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}

		resp, err := e.transport.Push(ctx, models.PushRequest{BaseVersion: baseVersion, Items: records})
		if err != nil {
			return err
		}

		for _, item := range pending {
			if err := v.MarkSynced(item.ID, resp.NewVersion); err != nil {
				return err
			}
		}
		if err := v.SetLastSyncVersion(resp.NewVersion); err != nil {
			return err
		}

		if !resp.HadConflict {
			return nil
		}

		for _, conflict := range resp.Conflicts {
			if err := e.applyConflict(v, conflict); err != nil {
				return err
			}
		}
	}
	return ErrSyncConflictUnresolved
}

// pullAll issues pull(since_version) repeatedly until has_more is
// false, buffering every page; records are applied only after the
// last page arrives, so a failed or cancelled pull applies nothing.
func (e *Engine) pullAll(ctx context.Context, v *vault.Controller) error {
	since, err := v.LastSyncVersion()
	if err != nil {
		return err
	}

	var buffered []models.SyncRecord
	for {
		resp, err := e.transport.Pull(ctx, since)
		if err != nil {
			return err
		}
		buffered = append(buffered, resp.Items...)
		if !resp.HasMore || len(resp.Items) == 0 {
			since = resp.CurrentVersion
			break
		}
		since = resp.Items[len(resp.Items)-1].Version
	}

	for _, rec := range buffered {
		if err := e.applyPulled(v, rec); err != nil {
			return err
		}
	}
	return v.SetLastSyncVersion(since)
}

// applyPulled integrates one pulled record per the sync algorithm: an
// absent local item is inserted, a present-and-settled one is
// overwritten, and a present-but-locally-edited one goes through
// conflict merge.
func (e *Engine) applyPulled(v *vault.Controller, rec models.SyncRecord) error {
	remote, err := e.decodeRecord(v, rec)
	if err != nil {
		return err
	}

	existing, getErr := v.Get(rec.ID)
	switch {
	case getErr == vault.ErrNotFound:
		return v.ApplyRemote(remote)
	case getErr != nil:
		return getErr
	case !existing.PendingSync:
		return v.ApplyRemote(remote)
	default:
		merged := mergeItems(existing, remote, e.deviceID, rec.DeviceID)
		return v.ApplyRemote(merged)
	}
}

// applyConflict re-merges a server-returned conflicting record against
// whatever is locally present (which may have changed since the push
// was built) and marks the result pending again for the next cycle.
func (e *Engine) applyConflict(v *vault.Controller, rec models.SyncRecord) error {
	remote, err := e.decodeRecord(v, rec)
	if err != nil {
		return err
	}
	existing, err := v.Get(rec.ID)
	if err == vault.ErrNotFound {
		return v.ApplyRemote(remote)
	}
	if err != nil {
		return err
	}
	merged := mergeItems(existing, remote, e.deviceID, rec.DeviceID)
	return v.ApplyRemote(merged)
}

func (e *Engine) collectPending(v *vault.Controller) ([]vault.VaultItem, error) {
	items, err := v.Snapshot()
	if err != nil {
		return nil, err
	}
	pending := make([]vault.VaultItem, 0, len(items))
	for _, it := range items {
		if it.PendingSync {
			pending = append(pending, it)
		}
	}
	return pending, nil
}

func (e *Engine) encodeRecord(v *vault.Controller, item vault.VaultItem) (models.SyncRecord, error) {
	env, err := v.EncryptItem(item, item.SyncVersion)
	if err != nil {
		return models.SyncRecord{}, err
	}
	return models.SyncRecord{
		ID:            item.ID,
		Version:       item.SyncVersion,
		EncryptedBlob: base64.StdEncoding.EncodeToString(env.Marshal()),
		IsDeleted:     item.IsDeleted,
		ModifiedAt:    item.ModifiedAt,
		DeviceID:      e.deviceID,
	}, nil
}

func (e *Engine) decodeRecord(v *vault.Controller, rec models.SyncRecord) (vault.VaultItem, error) {
	raw, err := base64.StdEncoding.DecodeString(rec.EncryptedBlob)
	if err != nil {
		return vault.VaultItem{}, crypto.ErrInvalidCiphertext
	}
	env, err := crypto.UnmarshalEnvelope(raw)
	if err != nil {
		return vault.VaultItem{}, err
	}
	item, err := v.DecryptItem(rec.ID, rec.Version, env)
	if err != nil {
		return vault.VaultItem{}, err
	}
	item.SyncVersion = rec.Version
	item.IsDeleted = rec.IsDeleted
	item.ModifiedAt = rec.ModifiedAt
	item.PendingSync = false
	return item, nil
}
