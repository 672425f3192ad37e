package cache

import (
	"context"
	"sync"
)

const defaultMemoryEntries = 1024

type memoryCache struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	maxEntries int
}

// NewMemory returns an in-process cache holding at most maxEntries
// payloads. When full it starts over empty.
func NewMemory(maxEntries int) Cache {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	return &memoryCache{
		entries:    make(map[string][]byte),
		maxEntries: maxEntries,
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]byte)
	return nil
}
