// Package cache stores built diagrams and rendered artifacts.
//
// Keys are derived from content hashes, so an entry never goes stale: a
// changed instrument or style yields a different key. TTLs only bound disk
// and memory use.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, under the user cache directory
//   - [RedisCache] for the server, shared between replicas
//   - [NullCache] when caching is disabled
//
// [Instrumented] wraps any backend and reports hits, misses and writes to
// the observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	// TTLDiagram bounds how long a built diagram is kept.
	TTLDiagram = 7 * 24 * time.Hour

	// TTLArtifact bounds how long a rendered artifact is kept.
	TTLArtifact = 7 * 24 * time.Hour
)
