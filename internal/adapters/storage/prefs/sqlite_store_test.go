package prefs

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"soaiadmin/internal/adapters/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

// TestGet_Unset verifies an unset preference reads as empty string, not an error.
func TestGet_Unset(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))
	v, err := s.Get(context.Background(), KeyRosterPageSize)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
}

// TestSetGet verifies the persist/read roundtrip and key replacement.
func TestSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(newTestDB(t))

	if err := s.Set(ctx, KeyRosterPageSize, "20"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, err := s.Get(ctx, KeyRosterPageSize)
	if err != nil || v != "20" {
		t.Fatalf("expected 20, got %q err=%v", v, err)
	}

	if err := s.Set(ctx, KeyRosterPageSize, "50"); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	v, _ = s.Get(ctx, KeyRosterPageSize)
	if v != "50" {
		t.Errorf("expected 50 after replace, got %q", v)
	}
}

// TestKeysAreIndependent verifies values live under distinct keys.
func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(newTestDB(t))

	if err := s.Set(ctx, KeyRosterPageSize, "100"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, err := s.Get(ctx, "some_other_key")
	if err != nil || v != "" {
		t.Errorf("unrelated key must read empty, got %q err=%v", v, err)
	}
}
