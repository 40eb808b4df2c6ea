// Package repository provides persistence implementations for
// authentication and synchronization services backed by PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keydrop/keydrop-core/internal/models"
)

// PostgresAuthRepository implements authentication and device
// persistence against a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository using
// the given database connection. db must be a valid *sql.DB connected
// to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists reports whether a user with the given login exists.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`, login,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new user with the given login and Argon2id
// verifier hash.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, id, login, verifierHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, login, auth_verifier_hash) VALUES ($1, $2, $3)`,
		id, login, verifierHash,
	)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUserByLogin fetches a user by login.
func (r *PostgresAuthRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, login, auth_verifier_hash FROM users WHERE login = $1`, login,
	).Scan(&u.ID, &u.Login, &u.AuthVerifierHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("GetUserByLogin: %w", err)
	}
	return &u, nil
}

// UpsertDevice registers a device for a user, updating its name if the
// device id is already known.
func (r *PostgresAuthRepository) UpsertDevice(ctx context.Context, d models.Device) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO devices (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, d.ID, d.UserID, d.Name, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("UpsertDevice: %w", err)
	}
	return nil
}

// SaveRefreshToken persists the hash of an issued refresh token.
func (r *PostgresAuthRepository) SaveRefreshToken(ctx context.Context, rt models.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, device_id, expires_at, revoked)
		VALUES ($1, $2, $3, $4, false)
	`, rt.TokenHash, rt.UserID, rt.DeviceID, rt.ExpiresAt)
	if err != nil {
		return fmt.Errorf("SaveRefreshToken: %w", err)
	}
	return nil
}

// GetRefreshToken looks up a refresh token by its hash.
func (r *PostgresAuthRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.DB.QueryRowContext(ctx, `
		SELECT token_hash, user_id, device_id, expires_at, revoked
		FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&rt.TokenHash, &rt.UserID, &rt.DeviceID, &rt.ExpiresAt, &rt.Revoked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("GetRefreshToken: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a refresh token as unusable, e.g. on logout
// or after a single-use rotation.
func (r *PostgresAuthRepository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("RevokeRefreshToken: %w", err)
	}
	return nil
}
