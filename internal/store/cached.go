package store

import (
	"context"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

// Cached is a read-through cache in front of a slower backend.
type Cached struct {
	backend KeyValueStore
	cache   *gocache.Cache
}

func NewCached(backend KeyValueStore, ttl time.Duration) *Cached {
	return &Cached{backend: backend, cache: gocache.New(ttl, 2*ttl)}
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if value, found := c.cache.Get(key); found {
		return value.(string), true, nil
	}

	value, found, err := c.backend.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}

	c.cache.Set(key, value, gocache.DefaultExpiration)
	return value, true, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.backend.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, value, gocache.DefaultExpiration)
	return nil
}

func (c *Cached) Remove(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return c.backend.Remove(ctx, key)
}
