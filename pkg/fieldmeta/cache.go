package fieldmeta

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-listsync/pkg/store"
)

type cacheKey struct {
	list  string
	field string
}

// Cache holds normalized field metadata keyed by (list identity, internal
// name). It is owned by whoever constructs it rather than being a hidden
// process-wide singleton; callers that juggle many lists over a long process
// should invalidate entries they no longer need.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]FieldMetadata
}

// NewCache constructs an empty metadata cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]FieldMetadata)}
}

// Get returns the cached metadata for (list, field) when present.
func (c *Cache) Get(list, field string) (FieldMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.entries[cacheKey{list, field}]
	return meta, ok
}

// Put stores metadata for (list, field).
func (c *Cache) Put(list, field string, meta FieldMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{list, field}] = meta
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(list, field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{list, field})
}

// InvalidateList removes every entry belonging to a list.
func (c *Cache) InvalidateList(list string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.list == list {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Resolver fetches raw metadata through a Store and memoizes the normalized
// result. A nil cache disables memoization.
type Resolver struct {
	store store.Store
	cache *Cache
}

// NewResolver constructs a Resolver. When cache is nil a private cache is
// created.
func NewResolver(s store.Store, cache *Cache) (*Resolver, error) {
	if s == nil {
		return nil, errors.New("fieldmeta: store is required")
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{store: s, cache: cache}, nil
}

// Cache exposes the resolver's cache so callers can hook invalidation.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns normalized metadata for (list, field), fetching through the
// store on a cache miss.
func (r *Resolver) Resolve(ctx context.Context, list, field string) (FieldMetadata, error) {
	if meta, ok := r.cache.Get(list, field); ok {
		return meta, nil
	}
	raw, err := r.store.FetchFieldMetadata(ctx, list, field)
	if err != nil {
		return FieldMetadata{}, fmt.Errorf("fieldmeta: fetch %s/%s: %w", list, field, err)
	}
	meta := Normalize(raw)
	r.cache.Put(list, field, meta)
	return meta, nil
}
