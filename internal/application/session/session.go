package session

import (
	"context"
	"log/slog"
	"sync"

	"soaiadmin/internal/adapters/storage/credential"
)

// Store holds the single process-wide bearer credential for the membership
// API. The in-memory value mirrors durable storage so reads are synchronous;
// storage failures always degrade to "no token", never to an error. The store
// is passed explicitly to the API client — there is no ambient global.
type Store struct {
	mu      sync.RWMutex
	token   string
	loaded  bool
	durable credential.Store
}

// NewStore creates a credential store over the given durable backend.
// PRE: durable is non-nil
// POST: Returns a store; the durable value is read lazily on first Get
func NewStore(durable credential.Store) *Store {
	return &Store{durable: durable}
}

// Get returns the current token, or empty string when none is held. The
// in-memory value wins; otherwise durable storage is consulted once. Never
// returns an error — a failing backend reads as "no token".
func (s *Store) Get() string {
	s.mu.RLock()
	if s.loaded {
		token := s.token
		s.mu.RUnlock()
		return token
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token
	}
	token, err := s.durable.Get(context.Background())
	if err != nil {
		slog.Warn("credential_read_failed", "error", err.Error())
		token = ""
	}
	s.token = token
	s.loaded = true
	return token
}

// Set persists the token and mirrors it in memory. An empty token clears.
// A durable write failure is logged but the in-memory value is still updated,
// so the session works until restart.
// PRE: none
// POST: Get returns token; durable storage holds it unless the write failed
func (s *Store) Set(token string) {
	if token == "" {
		s.Clear()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.loaded = true
	if err := s.durable.Set(context.Background(), token); err != nil {
		slog.Warn("credential_persist_failed", "error", err.Error())
	}
}

// Clear removes the credential from memory and durable storage. Called on
// explicit logout; the client enforces no expiry — an expired token simply
// makes upstream calls fail with an auth error.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	if err := s.durable.Clear(context.Background()); err != nil {
		slog.Warn("credential_clear_failed", "error", err.Error())
	}
}

// Present reports whether a token is currently held.
func (s *Store) Present() bool {
	return s.Get() != ""
}
