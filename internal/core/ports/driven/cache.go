package driven

import (
	"context"
	"time"
)

// Cache is a TTL key/value store for serialized query results. Values
// are opaque strings. Implementations are exception-safe: a backend
// failure surfaces as a miss or a no-op, never as an error the caller
// must handle.
type Cache interface {
	// Get returns the value for key, or "" and false on a miss.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores the value with a TTL. Best effort.
	Set(ctx context.Context, key, value string, ttl time.Duration)

	// Delete removes the key. Best effort.
	Delete(ctx context.Context, key string)

	// Close releases the backing connection.
	Close() error
}
