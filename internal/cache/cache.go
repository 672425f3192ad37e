// Package cache provides the content-addressed result cache used to memoize
// dataset reports. Keys are derived from dataset IDs and filter parameters,
// so entries never need to expire.
package cache

import (
	"context"

	"github.com/andresuchdata/retailbi/internal/config"
)

// Cache stores opaque payloads by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	InvalidateAll(ctx context.Context) error
}

// New returns a redis-backed cache when enabled, otherwise an in-process
// cache scoped to this server session.
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return NewMemory(defaultMemoryEntries), nil
	}
	return newRedisCache(cfg)
}

type noopCache struct{}

// NewNoop returns a cache that stores nothing.
func NewNoop() Cache {
	return &noopCache{}
}

func (n *noopCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *noopCache) Set(ctx context.Context, key string, value []byte) error {
	return nil
}

func (n *noopCache) InvalidateAll(ctx context.Context) error {
	return nil
}
