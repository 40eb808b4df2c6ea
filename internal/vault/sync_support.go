package vault

import (
	"encoding/json"
	"fmt"

	"github.com/keydrop/keydrop-core/internal/crypto"
)

// itemPayload is the subset of VaultItem fields that get encrypted for
// transmission as a sync record; sync/tombstone bookkeeping (id,
// version, is_deleted) travels alongside the ciphertext in plaintext.
type itemPayload struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite"`

	CreatedAt  int64 `json:"created_at"`
	ModifiedAt int64 `json:"modified_at"`

	// FieldModifiedAt travels with the item so the receiving side's
	// conflict merge has real per-field provenance to compare against,
	// not just this record's own whole-item ModifiedAt.
	FieldModifiedAt map[string]int64 `json:"field_modified_at,omitempty"`
}

func toPayload(item VaultItem) itemPayload {
	return itemPayload{
		Name: item.Name, Username: item.Username, Password: item.Password,
		URL: item.URL, Notes: item.Notes, Category: item.Category, Favorite: item.Favorite,
		CreatedAt: item.CreatedAt, ModifiedAt: item.ModifiedAt,
		FieldModifiedAt: item.FieldModifiedAt,
	}
}

func fromPayload(id string, p itemPayload) VaultItem {
	return VaultItem{
		ID: id, Name: p.Name, Username: p.Username, Password: p.Password,
		URL: p.URL, Notes: p.Notes, Category: p.Category, Favorite: p.Favorite,
		CreatedAt: p.CreatedAt, ModifiedAt: p.ModifiedAt,
		FieldModifiedAt: p.FieldModifiedAt,
	}
}

// itemAD derives the associated data binding a per-item envelope to a
// specific id and sync version, so a ciphertext from one version cannot
// be replayed as another.
func itemAD(id string, version int64) []byte {
	return []byte(fmt.Sprintf("%s\x1f%d", id, version))
}

// EncryptItem seals item's mutable fields into a per-item sync record
// envelope, bound to id and version via associated data.
func (c *Controller) EncryptItem(item VaultItem, version int64) (crypto.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return crypto.Envelope{}, ErrLocked
	}
	plaintext, err := json.Marshal(toPayload(item))
	if err != nil {
		return crypto.Envelope{}, err
	}
	return crypto.Encrypt(c.keys.VaultKey, plaintext, itemAD(item.ID, version))
}

// DecryptItem opens a sync record's envelope and reconstructs the
// item's mutable fields, verifying it was sealed for this id/version.
func (c *Controller) DecryptItem(id string, version int64, env crypto.Envelope) (VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return VaultItem{}, ErrLocked
	}
	plaintext, err := crypto.Decrypt(c.keys.VaultKey, env, itemAD(id, version))
	if err != nil {
		return VaultItem{}, err
	}
	var p itemPayload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return VaultItem{}, crypto.ErrInvalidCiphertext
	}
	return fromPayload(id, p), nil
}

// Snapshot returns a copy of every item currently in the vault,
// deleted ones included, for the sync engine to scan.
func (c *Controller) Snapshot() ([]VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return nil, ErrLocked
	}
	out := make([]VaultItem, len(c.vault.Items))
	for i, it := range c.vault.Items {
		out[i] = it.clone()
	}
	return out, nil
}

// ApplyRemote inserts or overwrites an item with server-authoritative
// data, bypassing field validation and the tombstone check — the sync
// engine has already decided this write should win.
func (c *Controller) ApplyRemote(item VaultItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return ErrLocked
	}
	idx := c.vault.find(item.ID)
	if idx < 0 {
		c.vault.Items = append(c.vault.Items, item)
		c.vault.reindex()
	} else {
		c.vault.Items[idx] = item
	}
	return c.saveLocked()
}

// MarkSynced records that item id was accepted by the server at
// newVersion, clearing its pending flag.
func (c *Controller) MarkSynced(id string, newVersion int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return ErrLocked
	}
	idx := c.vault.find(id)
	if idx < 0 {
		return nil
	}
	c.vault.Items[idx].SyncVersion = newVersion
	c.vault.Items[idx].PendingSync = false
	return c.saveLocked()
}

// LastSyncVersion returns the last version this vault has fully pulled
// through, or 0 if it has never synced.
func (c *Controller) LastSyncVersion() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return 0, ErrLocked
	}
	if c.vault.LastSync == nil {
		return 0, nil
	}
	return *c.vault.LastSync, nil
}

// SetLastSyncVersion records the highest server version this vault has
// fully integrated and persists it.
func (c *Controller) SetLastSyncVersion(v int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return ErrLocked
	}
	c.vault.LastSync = &v
	return c.saveLocked()
}

// Wipe discards the persisted blob and all in-memory vault state,
// bringing the controller back to a never-created state.
func (c *Controller) Wipe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys.Zero()
	c.vault = nil
	c.unlocked = false
	c.salt = nil
	if wiper, ok := c.store.(interface{ Wipe() error }); ok {
		return wiper.Wipe()
	}
	return nil
}
