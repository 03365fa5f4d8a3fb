package server

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/instrumap/pkg/cache"
	"github.com/matzehuels/instrumap/pkg/store"
)

// Backends holds the cache and store selected by Settings.
type Backends struct {
	Cache cache.Cache
	Store store.Store
}

// OpenBackends connects to Redis and MongoDB when their URLs are set and
// falls back to fallback (or a NullCache) and a MemoryStore otherwise.
func OpenBackends(ctx context.Context, s Settings, fallback cache.Cache, logger *log.Logger) (*Backends, error) {
	b := &Backends{Cache: fallback, Store: store.NewMemoryStore()}
	if b.Cache == nil {
		b.Cache = cache.NewNullCache()
	}

	if s.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, s.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		b.Cache = rc
		logger.Info("using redis cache")
	}

	if s.MongoURI != "" {
		ms, err := store.NewMongoStore(ctx, s.MongoURI, s.MongoDatabase)
		if err != nil {
			b.Cache.Close()
			return nil, fmt.Errorf("mongo store: %w", err)
		}
		b.Store = ms
		logger.Info("using mongo store", "database", s.MongoDatabase)
	}
	return b, nil
}

// Close releases both backends.
func (b *Backends) Close(ctx context.Context) error {
	cerr := b.Cache.Close()
	if err := b.Store.Close(ctx); err != nil {
		return err
	}
	return cerr
}
