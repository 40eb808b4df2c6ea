package vault

// SchemaVersion is the current at-rest blob format. It must be bumped
// whenever the KDF parameters or blob layout change
// ("silent parameter drift breaks unlock").
const SchemaVersion = 1

// DefaultCategories seeds every new vault.
var DefaultCategories = []string{"Login", "Credit Card", "Identity", "Secure Note"}

// MergedFields lists the item fields the sync engine's field-level
// last-write-wins conflict merge compares independently.
var MergedFields = []string{"name", "url", "username", "password", "notes", "category", "favorite"}

// VaultItem is one secret entry. Password is plaintext only while the
// owning vault is unlocked; it is never written to disk except inside
// an AEAD envelope.
type VaultItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite"`

	CreatedAt  int64 `json:"created_at"`
	ModifiedAt int64 `json:"modified_at"`

	// FieldModifiedAt tracks, for each name in MergedFields, when that
	// specific field's value last actually changed. The sync engine's
	// conflict merge uses it to tell "the other side never touched
	// this field" apart from "the other side set it to the same
	// value," which the single whole-item ModifiedAt above cannot.
	FieldModifiedAt map[string]int64 `json:"field_modified_at,omitempty"`

	// SyncVersion is 0 before the item's first successful push.
	SyncVersion int64 `json:"sync_version"`
	// IsDeleted is the tombstone flag. Once true, Update rejects edits
	// with ErrGone; only ApplyRemote (sync) replaces the item, e.g. when
	// a newer remote update beats the tombstone in the conflict merge.
	IsDeleted bool `json:"is_deleted"`
	// PendingSync is true iff a local mutation has not yet been
	// acknowledged by the server.
	PendingSync bool `json:"pending_sync"`
}

// clone returns a deep copy. Every field is either a string (immutable
// in Go) or a scalar except FieldModifiedAt, which must be copied
// explicitly so callers can't mutate the vault's internal state
// through a returned item.
func (i VaultItem) clone() VaultItem {
	if i.FieldModifiedAt != nil {
		cp := make(map[string]int64, len(i.FieldModifiedAt))
		for k, v := range i.FieldModifiedAt {
			cp[k] = v
		}
		i.FieldModifiedAt = cp
	}
	return i
}

// Vault is the in-memory, decrypted collection of items for one user.
type Vault struct {
	SchemaVersion int            `json:"schema_version"`
	Items         []VaultItem    `json:"items"`
	Categories    []string       `json:"categories"`
	LastSync      *int64         `json:"last_sync"`
	index         map[string]int `json:"-"`
}

// newEmptyVault builds a fresh vault with the default category set and
// no items.
func newEmptyVault() *Vault {
	cats := make([]string, len(DefaultCategories))
	copy(cats, DefaultCategories)
	v := &Vault{
		SchemaVersion: SchemaVersion,
		Items:         []VaultItem{},
		Categories:    cats,
	}
	v.reindex()
	return v
}

// reindex rebuilds the id->slot lookup after load or bulk mutation.
func (v *Vault) reindex() {
	v.index = make(map[string]int, len(v.Items))
	for i, it := range v.Items {
		v.index[it.ID] = i
	}
}

// find returns the slot index of the item with the given id, or -1.
func (v *Vault) find(id string) int {
	if v.index == nil {
		v.reindex()
	}
	if idx, ok := v.index[id]; ok {
		return idx
	}
	return -1
}
