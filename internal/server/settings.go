package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/matzehuels/instrumap/pkg/cache"
)

// Environment variables read by LoadSettings.
const (
	EnvAddr        = "INSTRUMAP_ADDR"
	EnvRedisURL    = "INSTRUMAP_REDIS_URL"
	EnvMongoURI    = "INSTRUMAP_MONGO_URI"
	EnvMongoDB     = "INSTRUMAP_MONGO_DB"
	EnvCORSOrigin  = "INSTRUMAP_CORS_ORIGIN"
	EnvMaxBody     = "INSTRUMAP_MAX_BODY"
	EnvCachePrefix = "INSTRUMAP_CACHE_PREFIX"
)

const (
	defaultAddr    = ":8080"
	defaultMaxBody = 1 << 20
)

// Settings configures the HTTP server and its backends. Empty backend URLs
// select the in-process implementations.
type Settings struct {
	Addr          string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	CORSOrigin    string
	MaxBodyBytes  int64
	// CachePrefix scopes cache keys so deployments can share one Redis.
	CachePrefix string
}

// LoadSettings reads settings from the environment. Variables found in the
// given .env files (default ".env") fill in whatever the environment does
// not already set; a missing file is not an error.
func LoadSettings(envFiles ...string) Settings {
	_ = godotenv.Load(envFiles...)

	s := Settings{
		Addr:          getEnv(EnvAddr, defaultAddr),
		RedisURL:      os.Getenv(EnvRedisURL),
		MongoURI:      os.Getenv(EnvMongoURI),
		MongoDatabase: os.Getenv(EnvMongoDB),
		CORSOrigin:    getEnv(EnvCORSOrigin, "*"),
		MaxBodyBytes:  defaultMaxBody,
		CachePrefix:   os.Getenv(EnvCachePrefix),
	}
	if v, err := strconv.ParseInt(os.Getenv(EnvMaxBody), 10, 64); err == nil && v > 0 {
		s.MaxBodyBytes = v
	}
	return s
}

// Keyer returns the cache keyer for s: the default keyer, scoped by
// CachePrefix when one is set.
func (s Settings) Keyer() cache.Keyer {
	if s.CachePrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), s.CachePrefix)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
