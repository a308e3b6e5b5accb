package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/webpro/backend/internal/model"
)

const identityColumns = `id::text, username, password_hash, enabled, locked, credentials_expired, created_at, updated_at`

func (db *Postgres) FindByUsername(ctx context.Context, username string) (*model.Identity, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM users
		WHERE username = $1
	`
	var identity model.Identity
	err := db.Pool.QueryRow(ctx, query, username).Scan(
		&identity.ID,
		&identity.Username,
		&identity.PasswordHash,
		&identity.Enabled,
		&identity.Locked,
		&identity.CredentialsExpired,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &identity, nil
}

// Save inserts identity when it has no ID yet, otherwise updates the row
// with that ID. Username conflicts surface as ErrDuplicate.
func (db *Postgres) Save(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	saved := *identity
	if saved.ID == "" {
		saved.ID = uuid.NewString()
		query := `
			INSERT INTO users (id, username, password_hash, enabled, locked, credentials_expired, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		err := db.Pool.QueryRow(ctx, query,
			saved.ID,
			saved.Username,
			saved.PasswordHash,
			saved.Enabled,
			saved.Locked,
			saved.CredentialsExpired,
		).Scan(&saved.CreatedAt, &saved.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicate
			}
			return nil, fmt.Errorf("insert identity: %w", err)
		}
		return &saved, nil
	}

	query := `
		UPDATE users
		SET username = $2, password_hash = $3, enabled = $4, locked = $5, credentials_expired = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := db.Pool.QueryRow(ctx, query,
		saved.ID,
		saved.Username,
		saved.PasswordHash,
		saved.Enabled,
		saved.Locked,
		saved.CredentialsExpired,
	).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		switch {
		case IsNoRows(err):
			return nil, ErrNotFound
		case isUniqueViolation(err):
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update identity: %w", err)
	}
	return &saved, nil
}
