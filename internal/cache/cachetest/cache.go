// Package cachetest provides an in-memory Cache for tests.
package cachetest

import (
	"context"
	"sync"
	"time"

	"github.com/connerkup/ecometrics/internal/cache"
)

// Cache is an in-memory cache.Cache. TTLs are ignored; Deleted records every
// key passed to Delete for assertions.
type Cache struct {
	mu sync.Mutex

	PingErr error
	GetErr  error
	SetErr  error

	data    map[string][]byte
	counts  map[string]int64
	Deleted []string
}

var _ cache.Cache = (*Cache)(nil)

func New() *Cache {
	return &Cache{
		data:   make(map[string][]byte),
		counts: make(map[string]int64),
	}
}

func (c *Cache) Ping(context.Context) error { return c.PingErr }

func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = append([]byte(nil), value...)
	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.GetErr != nil {
		return nil, false, c.GetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.Deleted = append(c.Deleted, k)
	}
	return nil
}

func (c *Cache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

// Has reports whether a key is currently cached.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
