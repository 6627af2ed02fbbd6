// Package cache provides the scan snapshot cache.
//
// A snapshot is the serialized set of module records produced by one scan of
// a module tree. Caching snapshots lets repeated refreshes of an unchanged
// installation skip the walk-and-parse work. Backends: file (default for
// CLI usage), redis (shared deployments), and null (caching disabled).
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a scan snapshot stays valid without a refresh.
const DefaultTTL = 15 * time.Minute

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
