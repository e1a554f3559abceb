// Package cache is the read-through id cache in front of catalog list queries.
//
// Only entity ids are cached. Callers always re-read the rows themselves, so
// row data is fresh while list membership may be stale for up to one TTL.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrMiss is returned by Store.GetIDs when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a key-value backend with per-key expiry.
type Store interface {
	GetIDs(ctx context.Context, key Key) ([]uint, error)
	SetIDs(ctx context.Context, key Key, ids []uint, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}

// LoadFunc recomputes the id list on a miss.
type LoadFunc func(ctx context.Context) ([]uint, error)

// IDCache wraps a Store with read-through semantics. A nil *IDCache disables
// caching and calls the loader every time.
type IDCache struct {
	store  Store
	keys   KeyBuilder
	logger *slog.Logger
}

func NewIDCache(store Store, keys KeyBuilder, logger *slog.Logger) *IDCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &IDCache{store: store, keys: keys, logger: logger}
}

func (c *IDCache) Keys() KeyBuilder {
	if c == nil {
		return NewKeyBuilder("")
	}
	return c.keys
}

// Load returns the cached ids under key, or runs load and caches its result
// for ttl. Backend failures are logged and treated as misses.
func (c *IDCache) Load(ctx context.Context, key Key, ttl time.Duration, load LoadFunc) ([]uint, error) {
	if c == nil {
		return load(ctx)
	}

	ids, err := c.store.GetIDs(ctx, key)
	switch {
	case err == nil:
		return ids, nil
	case !errors.Is(err, ErrMiss):
		c.logger.WarnContext(ctx, "cache read failed", "key", string(key), "error", err)
	}

	ids, err = load(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetIDs(ctx, key, ids, ttl); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", string(key), "error", err)
	}
	return ids, nil
}

// Invalidate drops key so the next Load recomputes it. A failed delete is
// logged; the entry then expires with its TTL.
func (c *IDCache) Invalidate(ctx context.Context, key Key) {
	if c == nil {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache invalidate failed", "key", string(key), "error", err)
	}
}
