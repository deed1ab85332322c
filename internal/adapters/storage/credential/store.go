package credential

import "context"

// StorageKey is the fixed key the bearer credential is persisted under.
const StorageKey = "soai_admin_token"

// Store persists the single process-wide bearer credential.
type Store interface {
	// Get returns the persisted token, or empty string when none is stored.
	Get(ctx context.Context) (string, error)
	// Set persists the token under the fixed key, replacing any previous value.
	Set(ctx context.Context, token string) error
	// Clear removes the persisted token.
	Clear(ctx context.Context) error
}
