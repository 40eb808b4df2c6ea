package vault

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keydrop/keydrop-core/internal/crypto"
)

// Controller is the vault model: it owns the decrypted,
// in-memory Vault plus the keys needed to seal/unseal it, and exposes
// create/unlock/lock alongside the item CRUD operations. The Session
// Controller (internal/session) drives these transitions and layers
// auto-lock and biometric unlock on top; Controller itself holds no
// opinion about session timers.
type Controller struct {
	store Store

	mu       sync.Mutex
	unlocked bool
	keys     crypto.KeySet
	salt     []byte
	params   crypto.KDFParams
	vault    *Vault
}

// NewController builds a Controller over the given persistence Store.
func NewController(store Store) *Controller {
	return &Controller{store: store, params: crypto.DefaultKDFParams()}
}

// Create initializes a brand-new vault protected by password and
// persists its encrypted blob. It fails with ErrAlreadyExists if the
// store already holds a blob.
func (c *Controller) Create(password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	exists, err := c.store.Exists()
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	params := crypto.DefaultKDFParams()
	masterKey, err := crypto.DeriveMasterKey(password, salt, params)
	if err != nil {
		return err
	}
	defer crypto.Zero(masterKey)

	keys, err := crypto.DeriveKeys(masterKey)
	if err != nil {
		return err
	}

	v := newEmptyVault()
	if err := c.persist(v, salt, params, keys); err != nil {
		keys.Zero()
		return err
	}

	c.salt = salt
	c.params = params
	c.keys = keys
	c.vault = v
	c.unlocked = true
	return nil
}

// Unlock loads the persisted blob, derives keys from password, and
// attempts to decrypt it. Any failure — missing blob, wrong password,
// or corrupted ciphertext — surfaces uniformly as ErrUnauthorized so
// callers cannot build an oracle from the distinction.
func (c *Controller) Unlock(password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Load()
	if err != nil {
		return ErrUnauthorized
	}
	blob, err := decodeBlob(raw)
	if err != nil {
		return ErrUnauthorized
	}

	masterKey, err := crypto.DeriveMasterKey(password, blob.Salt, blob.KDFParams)
	if err != nil {
		return ErrUnauthorized
	}
	defer crypto.Zero(masterKey)

	keys, err := crypto.DeriveKeys(masterKey)
	if err != nil {
		return ErrUnauthorized
	}

	v, err := openVault(blob.Envelope, keys.VaultKey)
	if err != nil {
		keys.Zero()
		return ErrUnauthorized
	}

	c.salt = blob.Salt
	c.params = blob.KDFParams
	c.keys = keys
	c.vault = v
	c.unlocked = true
	return nil
}

// Lock zeroizes the vault key and drops the plaintext vault from
// memory. It is always safe to call, including when already locked.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys.Zero()
	c.vault = nil
	c.unlocked = false
}

// Unlocked reports whether the vault currently holds decrypted state.
func (c *Controller) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

// AuthSubkey returns the subkey this device proves possession of the
// master password with when talking to the sync server. It is never
// the vault key and never the master password itself. Fails with
// ErrLocked if the vault hasn't been created/unlocked yet.
func (c *Controller) AuthSubkey() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return nil, ErrLocked
	}
	out := make([]byte, len(c.keys.AuthKey))
	copy(out, c.keys.AuthKey)
	return out, nil
}

// persist seals v with keys.VaultKey and writes the resulting blob.
func (c *Controller) persist(v *Vault, salt []byte, params crypto.KDFParams, keys crypto.KeySet) error {
	env, err := sealVault(v, keys.VaultKey)
	if err != nil {
		return err
	}
	blob := Blob{SchemaVersion: SchemaVersion, Salt: salt, KDFParams: params, Envelope: env}
	raw, err := encodeBlob(blob)
	if err != nil {
		return err
	}
	return c.store.Save(raw)
}

// saveLocked persists the current in-memory vault. Caller must hold mu.
func (c *Controller) saveLocked() error {
	return c.persist(c.vault, c.salt, c.params, c.keys)
}

// Add creates a new item from the caller-supplied fields and persists
// the vault. Name, Username, and Password must be non-empty (ErrInvalidPolicy).
// The returned item reflects server-unacknowledged defaults: SyncVersion
// 0, PendingSync true.
func (c *Controller) Add(item VaultItem) (VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return VaultItem{}, ErrLocked
	}
	if err := validateFields(item); err != nil {
		return VaultItem{}, err
	}

	now := time.Now().Unix()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.ModifiedAt = now
	item.FieldModifiedAt = newFieldTimestamps(now)
	item.SyncVersion = 0
	item.IsDeleted = false
	item.PendingSync = true

	c.vault.Items = append(c.vault.Items, item)
	c.vault.reindex()
	if err := c.saveLocked(); err != nil {
		return VaultItem{}, err
	}
	return item.clone(), nil
}

// Update overwrites the mutable fields of an existing item. Fails with
// ErrNotFound if id is unknown, or ErrGone if the item is tombstoned —
// a deleted item can never be resurrected by an edit.
func (c *Controller) Update(id string, fields VaultItem) (VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return VaultItem{}, ErrLocked
	}
	idx := c.vault.find(id)
	if idx < 0 {
		return VaultItem{}, ErrNotFound
	}
	existing := c.vault.Items[idx]
	if existing.IsDeleted {
		return VaultItem{}, ErrGone
	}

	fields.ID = existing.ID
	fields.CreatedAt = existing.CreatedAt
	fields.SyncVersion = existing.SyncVersion
	fields.IsDeleted = false
	if err := validateFields(fields); err != nil {
		return VaultItem{}, err
	}

	now := time.Now().Unix()
	fields.FieldModifiedAt = advanceFieldTimestamps(existing, fields, now)
	fields.ModifiedAt = now
	fields.PendingSync = true
	c.vault.Items[idx] = fields
	if err := c.saveLocked(); err != nil {
		return VaultItem{}, err
	}
	return fields.clone(), nil
}

// Delete flips the tombstone flag; it never physically removes the
// item. Calling Delete on an already-deleted item is a no-op success,
// preserving idempotence.
func (c *Controller) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return ErrLocked
	}
	idx := c.vault.find(id)
	if idx < 0 {
		return ErrNotFound
	}
	item := &c.vault.Items[idx]
	if item.IsDeleted {
		return nil
	}
	item.IsDeleted = true
	item.ModifiedAt = time.Now().Unix()
	item.PendingSync = true
	return c.saveLocked()
}

// Get returns a copy of the item with the given id, including
// tombstoned items so callers can inspect sync state.
func (c *Controller) Get(id string) (VaultItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return VaultItem{}, ErrLocked
	}
	idx := c.vault.find(id)
	if idx < 0 {
		return VaultItem{}, ErrNotFound
	}
	return c.vault.Items[idx].clone(), nil
}

// newFieldTimestamps stamps every field in MergedFields with at,
// used when an item is first created: every field counts as touched.
func newFieldTimestamps(at int64) map[string]int64 {
	m := make(map[string]int64, len(MergedFields))
	for _, f := range MergedFields {
		m[f] = at
	}
	return m
}

// advanceFieldTimestamps carries forward existing's per-field
// provenance, advancing only the fields whose value actually differs
// between existing and next. This is what lets the sync engine later
// tell an untouched field apart from one merely re-submitted unchanged.
func advanceFieldTimestamps(existing, next VaultItem, at int64) map[string]int64 {
	out := make(map[string]int64, len(MergedFields))
	for _, f := range MergedFields {
		out[f] = existing.FieldModifiedAt[f]
	}
	if next.Name != existing.Name {
		out["name"] = at
	}
	if next.URL != existing.URL {
		out["url"] = at
	}
	if next.Username != existing.Username {
		out["username"] = at
	}
	if next.Password != existing.Password {
		out["password"] = at
	}
	if next.Notes != existing.Notes {
		out["notes"] = at
	}
	if next.Category != existing.Category {
		out["category"] = at
	}
	if next.Favorite != existing.Favorite {
		out["favorite"] = at
	}
	return out
}

func validateFields(item VaultItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrInvalidPolicy
	}
	if strings.TrimSpace(item.Username) == "" {
		return ErrInvalidPolicy
	}
	if item.Password == "" {
		return ErrInvalidPolicy
	}
	return nil
}
