package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keydrop/keydrop-core/internal/models"
)

// PostgresCommandRepository implements remote-command persistence
// against a PostgreSQL database. Commands are addressed to a single
// device and survive redelivery: acking is idempotent.
type PostgresCommandRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCommandRepository creates a new PostgresCommandRepository
// using the given database connection.
func NewPostgresCommandRepository(db *sql.DB) *PostgresCommandRepository {
	return &PostgresCommandRepository{DB: db}
}

// Create inserts a new pending command for the given device.
func (r *PostgresCommandRepository) Create(ctx context.Context, cmd models.RemoteCommand) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO remote_commands (id, device_id, type, created_at, acked)
		VALUES ($1, $2, $3, $4, false)
	`, cmd.ID, cmd.DeviceID, string(cmd.Type), cmd.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListPending returns every un-acked command for a device, oldest
// first.
func (r *PostgresCommandRepository) ListPending(ctx context.Context, deviceID string) ([]models.RemoteCommand, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, device_id, type, created_at, acked
		FROM remote_commands
		WHERE device_id = $1 AND acked = false
		ORDER BY created_at ASC
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	defer rows.Close()

	var commands []models.RemoteCommand
	for rows.Next() {
		var cmd models.RemoteCommand
		var typ string
		if err := rows.Scan(&cmd.ID, &cmd.DeviceID, &typ, &cmd.CreatedAt, &cmd.Acked); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		cmd.Type = models.CommandType(typ)
		commands = append(commands, cmd)
	}
	return commands, nil
}

// Ack marks a command as acknowledged. Acking an already-acked or
// unknown command id is a no-op, so redelivered acks from a
// retry-happy client never error.
func (r *PostgresCommandRepository) Ack(ctx context.Context, deviceID, commandID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE remote_commands SET acked = true WHERE device_id = $1 AND id = $2`,
		deviceID, commandID,
	)
	if err != nil {
		return fmt.Errorf("Ack: %w", err)
	}
	return nil
}
