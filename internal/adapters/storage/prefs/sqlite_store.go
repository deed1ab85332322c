package prefs

import (
	"context"
	"database/sql"
	"time"

	"soaiadmin/internal/adapters/storage"
)

// SQLiteStore implements Store on the console_state table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new preference store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a preference value.
// PRE: key is non-empty
// POST: Returns the value, or empty string when unset
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM console_state WHERE key = ?", key)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set persists a preference value.
// PRE: key is non-empty
// POST: Value is persisted (insert or replace)
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO console_state (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}
