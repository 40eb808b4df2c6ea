package syncengine

import (
	"testing"

	"github.com/keydrop/keydrop-core/internal/vault"
)

// fieldTimestamps builds a FieldModifiedAt map where every field in
// vault.MergedFields is stamped at base, except for the overrides.
func fieldTimestamps(base int64, overrides map[string]int64) map[string]int64 {
	m := make(map[string]int64, len(vault.MergedFields))
	for _, f := range vault.MergedFields {
		m[f] = base
	}
	for k, v := range overrides {
		m[k] = v
	}
	return m
}

func TestMergeItems_NonConflictingFieldEditsBothSurvive(t *testing.T) {
	// A and B both start from item X at a common base (t=50). A
	// changes only username at t=100; B changes only notes at t=101.
	// Neither side touched the other's field, so the merge must carry
	// both edits forward even though B's record as a whole has the
	// later ModifiedAt.
	a := vault.VaultItem{
		ID: "x", Username: "a-user", Notes: "base-notes", CreatedAt: 10,
		ModifiedAt:      100,
		FieldModifiedAt: fieldTimestamps(50, map[string]int64{"username": 100}),
		SyncVersion:     6,
	}
	b := vault.VaultItem{
		ID: "x", Username: "base-user", Notes: "b-notes", CreatedAt: 10,
		ModifiedAt:      101,
		FieldModifiedAt: fieldTimestamps(50, map[string]int64{"notes": 101}),
		SyncVersion:     5,
	}

	merged := mergeItems(b, a, "device-b", "device-a")

	if merged.Username != "a-user" {
		t.Errorf("expected A's username edit to survive, got %q", merged.Username)
	}
	if merged.Notes != "b-notes" {
		t.Errorf("expected B's notes edit to survive, got %q", merged.Notes)
	}
	if !merged.PendingSync {
		t.Error("expected merged item to be marked pending sync")
	}
}

func TestMergeItems_SameFieldConflictPicksLargerFieldModifiedAt(t *testing.T) {
	local := vault.VaultItem{
		ID: "x", Username: "local-user", Notes: "local-notes",
		ModifiedAt:      100,
		FieldModifiedAt: fieldTimestamps(50, map[string]int64{"username": 100, "notes": 100}),
		SyncVersion:     5,
	}
	remote := vault.VaultItem{
		ID: "x", Username: "remote-user", Notes: "remote-notes",
		ModifiedAt:      101,
		FieldModifiedAt: fieldTimestamps(50, map[string]int64{"username": 101, "notes": 101}),
		SyncVersion:     6,
	}

	merged := mergeItems(local, remote, "device-b", "device-a")

	if merged.Username != "remote-user" || merged.Notes != "remote-notes" {
		t.Errorf("expected remote side to win both fields it edited later, got %+v", merged)
	}
}

func TestMergeItems_CreatedAtKeepsEarliest(t *testing.T) {
	local := vault.VaultItem{ID: "x", ModifiedAt: 100, CreatedAt: 10, FieldModifiedAt: fieldTimestamps(10, nil)}
	remote := vault.VaultItem{ID: "x", ModifiedAt: 200, CreatedAt: 20, FieldModifiedAt: fieldTimestamps(20, nil)}

	merged := mergeItems(local, remote, "a", "b")
	if merged.CreatedAt != 10 {
		t.Errorf("expected CreatedAt 10 (earliest), got %d", merged.CreatedAt)
	}
}

func TestMergeItems_TieBrokenBySyncVersion(t *testing.T) {
	local := vault.VaultItem{
		ID: "x", Username: "local", ModifiedAt: 100, SyncVersion: 5,
		FieldModifiedAt: fieldTimestamps(100, nil),
	}
	remote := vault.VaultItem{
		ID: "x", Username: "remote", ModifiedAt: 100, SyncVersion: 6,
		FieldModifiedAt: fieldTimestamps(100, nil),
	}

	merged := mergeItems(local, remote, "a", "b")
	if merged.Username != "remote" {
		t.Errorf("expected remote (higher sync version) to win tie, got %+v", merged)
	}
}

func TestMergeItems_TieBrokenByDeviceID(t *testing.T) {
	local := vault.VaultItem{
		ID: "x", Username: "local", ModifiedAt: 100, SyncVersion: 5,
		FieldModifiedAt: fieldTimestamps(100, nil),
	}
	remote := vault.VaultItem{
		ID: "x", Username: "remote", ModifiedAt: 100, SyncVersion: 5,
		FieldModifiedAt: fieldTimestamps(100, nil),
	}

	merged := mergeItems(local, remote, "zzz", "aaa")
	if merged.Username != "local" {
		t.Errorf("expected lexicographically larger device id (local=zzz) to win full tie, got %+v", merged)
	}
}

func TestMergeItems_TombstoneStickyOnTie(t *testing.T) {
	local := vault.VaultItem{ID: "x", IsDeleted: true, ModifiedAt: 100}
	remote := vault.VaultItem{ID: "x", Username: "updated", ModifiedAt: 100, FieldModifiedAt: fieldTimestamps(100, nil)}

	merged := mergeItems(local, remote, "a", "b")
	if !merged.IsDeleted {
		t.Error("expected tombstone to win on a modified_at tie")
	}
}

func TestMergeItems_UpdateBeatsOlderTombstone(t *testing.T) {
	local := vault.VaultItem{ID: "x", IsDeleted: true, ModifiedAt: 50}
	remote := vault.VaultItem{ID: "x", Username: "updated", ModifiedAt: 100, FieldModifiedAt: fieldTimestamps(100, nil)}

	merged := mergeItems(local, remote, "a", "b")
	if merged.IsDeleted {
		t.Error("expected newer update to beat an older tombstone")
	}
	if merged.Username != "updated" {
		t.Errorf("expected update's fields, got %+v", merged)
	}
}
