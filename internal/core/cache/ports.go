package cache

import (
	"context"
	"time"
)

// Cache is the key/value port backing settings, fee tables, sessions, nonces
// and the store list transient.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns the cached value, an error wrapping ErrNotFound if the key is missing,
	// or another error on failure.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GetMany retrieves several values at once; missing keys are omitted from the result.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// SetMany stores several values atomically with the same TTL.
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
