package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/instrumap/pkg/observability"
)

// Instrumented reports cache traffic to observability.Cache().
type Instrumented struct {
	Cache
}

// Instrument wraps c. Wrapping an already instrumented cache returns it
// unchanged.
func Instrument(c Cache) Cache {
	if _, ok := c.(Instrumented); ok {
		return c
	}
	return Instrumented{Cache: c}
}

// Get implements Cache.
func (i Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := i.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

// Set implements Cache.
func (i Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := i.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// KeyType returns the stage a key belongs to ("diagram" or "artifact"),
// ignoring any scope prefix. Unknown keys report "other".
func KeyType(key string) string {
	for _, p := range []string{prefixDiagram, prefixArtifact} {
		if strings.HasPrefix(key, p+":") || strings.Contains(key, ":"+p+":") {
			return p
		}
	}
	return "other"
}

var _ Cache = Instrumented{}
