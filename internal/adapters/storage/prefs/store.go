package prefs

import "context"

// Keys for persisted console preferences.
const (
	KeyRosterPageSize = "roster_page_size"
)

// Store persists small console display preferences across restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
