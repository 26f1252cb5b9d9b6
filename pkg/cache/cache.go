package cache

import (
	"context"

	"postergo/pkg/store"
)

// Cacher defines the caching interface.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// StoreCache implements Cacher on the store's cache table. Tile images
// land here so repeated posters over the same area skip the network.
type StoreCache struct {
	store store.CacheStore
}

// NewStoreCache creates a new cache backed by the given store.
func NewStoreCache(s store.CacheStore) *StoreCache {
	return &StoreCache{store: s}
}

func (c *StoreCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	return c.store.GetCache(ctx, key)
}

func (c *StoreCache) SetCache(ctx context.Context, key string, val []byte) error {
	return c.store.SetCache(ctx, key, val)
}

// Null is a Cacher that never hits. Used when caching is disabled.
type Null struct{}

func (Null) GetCache(context.Context, string) ([]byte, bool) { return nil, false }
func (Null) SetCache(context.Context, string, []byte) error  { return nil }
