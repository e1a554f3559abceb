package cache

import (
	"context"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Each replica has its own copy,
// which is fine for TTL-bounded staleness but means invalidations are local.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) GetIDs(_ context.Context, key Key) ([]uint, error) {
	v, ok := s.c.Get(string(key))
	if !ok {
		return nil, ErrMiss
	}
	ids, ok := v.([]uint)
	if !ok {
		return nil, ErrMiss
	}
	return slices.Clone(ids), nil
}

func (s *MemoryStore) SetIDs(_ context.Context, key Key, ids []uint, ttl time.Duration) error {
	s.c.Set(string(key), slices.Clone(ids), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.c.Delete(string(key))
	return nil
}
