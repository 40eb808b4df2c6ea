package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keydrop/keydrop-core/internal/models"
)

// PostgresSyncRepository implements sync-record persistence against a
// PostgreSQL database. The server stores only opaque ciphertext plus
// versioning metadata; it never decrypts EncryptedBlob.
type PostgresSyncRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresSyncRepository creates a new PostgresSyncRepository using
// the provided *sql.DB. db must be a valid connection to a PostgreSQL
// instance.
func NewPostgresSyncRepository(db *sql.DB) *PostgresSyncRepository {
	return &PostgresSyncRepository{DB: db}
}

// GetMaxVersion retrieves the highest sync_records version belonging
// to userID. If no records exist, it returns 0.
func (r *PostgresSyncRepository) GetMaxVersion(ctx context.Context, userID string) (int64, error) {
	var version int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM sync_records WHERE user_id = $1
	`, userID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("GetMaxVersion: %w", err)
	}
	return version, nil
}

// PullSince returns every record for userID with version in
// (sinceVersion, currentVersion], ordered by version, up to limit
// rows, plus whether more rows remain beyond the page.
func (r *PostgresSyncRepository) PullSince(ctx context.Context, userID string, sinceVersion int64, limit int) ([]models.SyncRecord, bool, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, version, encrypted_blob, is_deleted, modified_at, device_id
		FROM sync_records
		WHERE user_id = $1 AND version > $2
		ORDER BY version ASC
		LIMIT $3
	`, userID, sinceVersion, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("PullSince: %w", err)
	}
	defer rows.Close()

	var records []models.SyncRecord
	for rows.Next() {
		var rec models.SyncRecord
		if err := rows.Scan(&rec.ID, &rec.Version, &rec.EncryptedBlob, &rec.IsDeleted, &rec.ModifiedAt, &rec.DeviceID); err != nil {
			return nil, false, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	return records, hasMore, nil
}

// GetRecord fetches a single record by id for the given user.
func (r *PostgresSyncRepository) GetRecord(ctx context.Context, userID, id string) (*models.SyncRecord, error) {
	var rec models.SyncRecord
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, version, encrypted_blob, is_deleted, modified_at, device_id
		FROM sync_records WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&rec.ID, &rec.Version, &rec.EncryptedBlob, &rec.IsDeleted, &rec.ModifiedAt, &rec.DeviceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("GetRecord: %w", err)
	}
	return &rec, nil
}

// PushUpsert integrates a push batch within a single transaction. For
// each item whose locally-known pre-push version (item.Version) is
// behind the row currently stored for that id, the item is rejected
// as a conflict and the stored row is returned to the caller instead
// of being overwritten. All non-conflicting items are stamped with the
// same freshly assigned version (current max + 1), matching a single
// push being one point in the server's total order.
func (r *PostgresSyncRepository) PushUpsert(ctx context.Context, userID string, items []models.SyncRecord) (newVersion int64, conflicts []models.SyncRecord, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var maxVersion int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM sync_records WHERE user_id = $1`, userID,
	).Scan(&maxVersion); err != nil {
		return 0, nil, fmt.Errorf("check max version: %w", err)
	}
	candidateVersion := maxVersion + 1

	applied := false
	for _, item := range items {
		var storedVersion int64
		err := tx.QueryRowContext(ctx,
			`SELECT version FROM sync_records WHERE user_id = $1 AND id = $2`, userID, item.ID,
		).Scan(&storedVersion)
		if err != nil && err != sql.ErrNoRows {
			return 0, nil, fmt.Errorf("check item version: %w", err)
		}

		if err == nil && storedVersion > item.Version {
			var stored models.SyncRecord
			if err := tx.QueryRowContext(ctx, `
				SELECT id, version, encrypted_blob, is_deleted, modified_at, device_id
				FROM sync_records WHERE user_id = $1 AND id = $2
			`, userID, item.ID).Scan(&stored.ID, &stored.Version, &stored.EncryptedBlob, &stored.IsDeleted, &stored.ModifiedAt, &stored.DeviceID); err != nil {
				return 0, nil, fmt.Errorf("load conflict record: %w", err)
			}
			conflicts = append(conflicts, stored)
			continue
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sync_records (id, user_id, version, encrypted_blob, is_deleted, modified_at, device_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (user_id, id) DO UPDATE SET
				version = EXCLUDED.version,
				encrypted_blob = EXCLUDED.encrypted_blob,
				is_deleted = EXCLUDED.is_deleted,
				modified_at = EXCLUDED.modified_at,
				device_id = EXCLUDED.device_id
		`, item.ID, userID, candidateVersion, item.EncryptedBlob, item.IsDeleted, item.ModifiedAt, item.DeviceID)
		if err != nil {
			return 0, nil, fmt.Errorf("upsert: %w", err)
		}
		applied = true
	}

	finalVersion := maxVersion
	if applied {
		finalVersion = candidateVersion
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit: %w", err)
	}
	return finalVersion, conflicts, nil
}
