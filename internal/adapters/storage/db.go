package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the console's local state database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// The console holds no roster data locally — members live upstream.
	// Local state is a small key/value table: the bearer credential and
	// per-console display preferences.
	schema := `
	CREATE TABLE IF NOT EXISTS console_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
