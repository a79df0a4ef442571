// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process cache on top of patrickmn/go-cache.
type MemoryCache struct {
	store  *gocache.Cache
	closed atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a memory cache. Expired entries are purged every
// cleanupInterval; zero disables the janitor.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	v, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return slices.Clone(v.([]byte)), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, slices.Clone(value), ttl)
	c.sets.Add(1)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.store.Flush()
	return nil
}

func (c *MemoryCache) Ping(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return nil
}

// Close flushes the cache. Later calls return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.store.Flush()
	}
	return nil
}

func (c *MemoryCache) Stats() Stats {
	return newStats(c.hits.Load(), c.misses.Load(), c.sets.Load(), c.store.ItemCount())
}
