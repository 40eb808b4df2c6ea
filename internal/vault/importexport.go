package vault

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportRecord is the documented plaintext record format for
// exportPlain/importPlain. Sync and tombstone metadata
// are intentionally omitted: an imported record is always treated as
// a brand-new local item.
type ExportRecord struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite"`
}

// ExportPlain emits every non-deleted item as plaintext JSON. It asks
// for no confirmation itself; the UI calling this MUST require
// explicit user confirmation before invoking it, since the result defeats the
// zero-knowledge property once it leaves the process.
func (c *Controller) ExportPlain() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unlocked {
		return nil, ErrLocked
	}

	records := make([]ExportRecord, 0, len(c.vault.Items))
	for _, it := range c.vault.Items {
		if it.IsDeleted {
			continue
		}
		records = append(records, ExportRecord{
			Name:     it.Name,
			Username: it.Username,
			Password: it.Password,
			URL:      it.URL,
			Notes:    it.Notes,
			Category: it.Category,
			Favorite: it.Favorite,
		})
	}
	return json.Marshal(records)
}

// ImportPlain parses a JSON array of ExportRecord and adds each as a
// new item. Records failing field validation (empty name/username/
// password) are skipped rather than aborting the whole import; the
// caller MUST require explicit user confirmation before invoking this.
func (c *Controller) ImportPlain(data []byte) (int, error) {
	c.mu.Lock()
	if !c.unlocked {
		c.mu.Unlock()
		return 0, ErrLocked
	}
	c.mu.Unlock()

	var records []ExportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, err
	}

	imported := 0
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().Unix()
	for _, r := range records {
		item := VaultItem{
			Name:     r.Name,
			Username: r.Username,
			Password: r.Password,
			URL:      r.URL,
			Notes:    r.Notes,
			Category: r.Category,
			Favorite: r.Favorite,
		}
		if err := validateFields(item); err != nil {
			continue
		}
		item.ID = uuid.NewString()
		item.CreatedAt = now
		item.ModifiedAt = now
		item.FieldModifiedAt = newFieldTimestamps(now)
		item.PendingSync = true
		c.vault.Items = append(c.vault.Items, item)
		imported++
	}
	c.vault.reindex()
	if imported > 0 {
		if err := c.saveLocked(); err != nil {
			return imported, err
		}
	}
	return imported, nil
}
