package cache

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Memo memoizes JSON-encodable computations in a Cache. Concurrent callers
// asking for the same key share one computation. Cache failures only cost
// a recomputation.
type Memo struct {
	cache  Cache
	prefix string
	group  singleflight.Group
}

func NewMemo(c Cache, prefix string) *Memo {
	if c == nil {
		c = NewNoop()
	}
	return &Memo{cache: c, prefix: keyPrefix(prefix)}
}

// Key builds a report key under this memo's prefix.
func (m *Memo) Key(name string, datasetIDs []string, params any) (string, error) {
	return ReportKey(m.prefix, name, datasetIDs, params)
}

// Remember returns the cached value for key, or runs compute and caches its
// result. A nil memo always computes.
func Remember[T any](ctx context.Context, m *Memo, key string, compute func() (T, error)) (T, error) {
	if m == nil {
		return compute()
	}

	payload, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache get failed")
	} else if ok {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		result, err := compute()
		if err != nil {
			return result, err
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
			return result, nil
		}
		if err := m.cache.Set(ctx, key, encoded); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every entry under the cache's prefix. A nil memo has
// nothing to drop.
func (m *Memo) Invalidate(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.cache.InvalidateAll(ctx)
}
