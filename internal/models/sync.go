package models

// SyncRecord is the server-visible shape of one vault item: an opaque
// envelope keyed by (id, version). The server never decrypts
// EncryptedBlob; it only orders and stores it.
type SyncRecord struct {
	ID string `json:"id"`
	// Version is server-assigned and strictly monotonic per user.
	Version int64 `json:"version"`
	// EncryptedBlob is base64(nonce‖ciphertext+tag); AD = id‖version.
	EncryptedBlob string `json:"encrypted_blob"`
	IsDeleted     bool   `json:"is_deleted"`
	ModifiedAt    int64  `json:"modified_at"`
	// DeviceID is the device that authored this version, stamped by
	// the client at push time. The server stores and returns it
	// unexamined; it exists so a receiving client's conflict merge can
	// break a full tie lexicographically by origin device id instead
	// of always favoring its own local record.
	DeviceID string `json:"device_id"`
}

// PullResponse answers GET /sync/pull.
type PullResponse struct {
	CurrentVersion int64        `json:"current_version"`
	Items          []SyncRecord `json:"items"`
	HasMore        bool         `json:"has_more"`
}

// PushRequest is the body of POST /sync/push. BaseVersion is the
// client's last_sync_version; each item carries its pre-push version
// so the server can detect a lost-update race.
type PushRequest struct {
	BaseVersion int64        `json:"base_version"`
	Items       []SyncRecord `json:"items"`
}

// PushResponse answers POST /sync/push.
type PushResponse struct {
	NewVersion  int64        `json:"new_version"`
	HadConflict bool         `json:"had_conflicts"`
	Conflicts   []SyncRecord `json:"conflicts"`
}
