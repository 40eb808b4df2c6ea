package syncengine

import "github.com/keydrop/keydrop-core/internal/vault"

// mergeItems resolves a local/remote conflict on the same item id with
// true field-level last-write-wins: for each field in
// vault.MergedFields, the side whose FieldModifiedAt entry for that
// field is larger supplies that field's value, ties broken by larger
// SyncVersion then by lexicographically larger origin device id.
// Because each field carries its own provenance timestamp (advanced by
// vault.Controller.Update only for fields whose value actually
// changed), a field neither side re-touched keeps whatever value it
// already had, so non-conflicting concurrent edits to different fields
// from both sides survive the merge intact — only a field both sides
// actually edited picks a single winner.
//
// is_deleted is sticky: a deletion wins over an opposing update
// whenever its ModifiedAt is not strictly earlier than the update's,
// even on a tie that would otherwise favor the update. created_at is
// kept from whichever side is older.
func mergeItems(local, remote vault.VaultItem, localDeviceID, remoteDeviceID string) vault.VaultItem {
	if local.IsDeleted != remote.IsDeleted {
		del, upd := local, remote
		if remote.IsDeleted {
			del, upd = remote, local
		}
		if del.ModifiedAt >= upd.ModifiedAt {
			merged := del
			merged.CreatedAt = earliest(local.CreatedAt, remote.CreatedAt)
			merged.SyncVersion = maxInt64(local.SyncVersion, remote.SyncVersion)
			merged.PendingSync = true
			return merged
		}
	}

	merged := local
	// Reaching here with differing flags means the update beat the tombstone.
	merged.IsDeleted = local.IsDeleted && remote.IsDeleted
	timestamps := make(map[string]int64, len(vault.MergedFields))
	for _, field := range vault.MergedFields {
		if fieldWinnerIsRemote(field, local, remote, localDeviceID, remoteDeviceID) {
			setField(&merged, field, remote)
			timestamps[field] = remote.FieldModifiedAt[field]
		} else {
			timestamps[field] = local.FieldModifiedAt[field]
		}
	}
	merged.FieldModifiedAt = timestamps

	merged.CreatedAt = earliest(local.CreatedAt, remote.CreatedAt)
	merged.ModifiedAt = maxInt64(local.ModifiedAt, remote.ModifiedAt)
	merged.SyncVersion = maxInt64(local.SyncVersion, remote.SyncVersion)
	merged.PendingSync = true
	return merged
}

// fieldWinnerIsRemote decides, for a single field, whether remote's
// value should win: larger FieldModifiedAt, then larger SyncVersion,
// then lexicographically larger device id, all as tie-breaks in order.
func fieldWinnerIsRemote(field string, local, remote vault.VaultItem, localDeviceID, remoteDeviceID string) bool {
	lt := local.FieldModifiedAt[field]
	rt := remote.FieldModifiedAt[field]
	if lt != rt {
		return rt > lt
	}
	if local.SyncVersion != remote.SyncVersion {
		return remote.SyncVersion > local.SyncVersion
	}
	return remoteDeviceID > localDeviceID
}

// setField copies one mutable field from "from" onto item.
func setField(item *vault.VaultItem, field string, from vault.VaultItem) {
	switch field {
	case "name":
		item.Name = from.Name
	case "url":
		item.URL = from.URL
	case "username":
		item.Username = from.Username
	case "password":
		item.Password = from.Password
	case "notes":
		item.Notes = from.Notes
	case "category":
		item.Category = from.Category
	case "favorite":
		item.Favorite = from.Favorite
	}
}

func earliest(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
