// Package cache stores computed layouts and rendered artifacts.
//
// Every backend implements [Cache], a byte-oriented key/value store with
// per-entry TTLs. Keys are produced by a [Keyer] so the CLI, the HTTP server
// and tests agree on the key format:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: shared cache backed by a TTL-indexed collection
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	key := cache.NewDefaultKeyer().LayoutKey(graphHash, opts)
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // use cached layout
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with expiring entries.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry
	// reports hit == false with a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Cache entry lifetimes.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
