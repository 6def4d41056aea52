package store

import (
	"context"
	gocache "github.com/patrickmn/go-cache"
)

type Memory struct {
	cache *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	return value.(string), true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}
