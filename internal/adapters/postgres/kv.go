package postgres

// Package postgres provides the Postgres-backed persistence adapter.
// State lives in a single session_state table; SetAll runs inside one
// transaction so a concurrent reader sees all entries or none.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/parceldesk/ops-api/internal/errors"
	"github.com/parceldesk/ops-api/internal/ports"
)

// KVStore implements ports.KeyValueStore on a session_state table.
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a Postgres key-value store.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrNotFound
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("session_state get: %w", apperrors.MapDBError(err))
	}
	return value, nil
}

func (s *KVStore) SetAll(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session_state begin: %w", err)
	}
	defer func() {
		// No-op when the transaction committed.
		_ = tx.Rollback()
	}()

	for key, value := range entries {
		if key == "" {
			return errors.New("key cannot be empty")
		}
		if _, execErr := tx.ExecContext(ctx, `
			INSERT INTO session_state (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value); execErr != nil {
			return fmt.Errorf("session_state upsert: %w", apperrors.MapDBError(execErr))
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("session_state commit: %w", apperrors.MapDBError(commitErr))
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("session_state delete: %w", apperrors.MapDBError(err))
	}
	return nil
}
