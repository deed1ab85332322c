package credential

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

// NewSQLiteStore creates a new credential store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the persisted token.
// PRE: none
// POST: Returns the token, or empty string when no row exists
func (s *SQLiteStore) Get(ctx context.Context) (string, error) {
	row := s.db.QueryRowContext(ctx, "SELECT value FROM console_state WHERE key = ?", StorageKey)
	var token string
	err := row.Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set persists the token under the fixed key.
// PRE: token is non-empty
// POST: Token is persisted (insert or replace)
func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO console_state (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		StorageKey, token, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Clear removes the persisted token.
// PRE: none
// POST: No row exists for the credential key
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM console_state WHERE key = ?", StorageKey)
	return err
}
