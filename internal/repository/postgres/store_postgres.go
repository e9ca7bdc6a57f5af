package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andressep95/estate-admin/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS web_storage (
		namespace  TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      TEXT        NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, key)
	)`

type storeRepository struct {
	db        *sqlx.DB
	namespace string
}

// NewStoreRepository creates a PostgreSQL-backed key-value store scoped to namespace
func NewStoreRepository(db *sqlx.DB, namespace string) repository.KeyValueStore {
	return &storeRepository{db: db, namespace: namespace}
}

// EnsureSchema creates the web_storage table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create web_storage table: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key
func (r *storeRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM web_storage
		WHERE namespace = $1 AND key = $2`

	var value string
	err := r.db.GetContext(ctx, &value, query, r.namespace, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the value stored under key
func (r *storeRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO web_storage (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, r.namespace, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// Remove deletes the value stored under key; a missing key is not an error
func (r *storeRepository) Remove(ctx context.Context, key string) error {
	query := `DELETE FROM web_storage WHERE namespace = $1 AND key = $2`

	_, err := r.db.ExecContext(ctx, query, r.namespace, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	return nil
}

// Clear deletes every key of the namespace
func (r *storeRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM web_storage WHERE namespace = $1`

	_, err := r.db.ExecContext(ctx, query, r.namespace)
	if err != nil {
		return fmt.Errorf("failed to clear namespace %s: %w", r.namespace, err)
	}

	return nil
}
