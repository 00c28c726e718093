// Package cache stores rendered calendar payloads between requests.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte cache keyed by rendered-view identity.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// maxEntries bounds Memory, since keys include dates taken from request URLs.
const maxEntries = 512

type entry struct {
	value   []byte
	fetched time.Time
}

// Memory is an in-process TTL cache. A non-positive TTL disables it.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
	now   func() time.Time
}

// NewMemory builds a Memory cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:   ttl,
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e) {
		delete(c.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok && len(c.items) >= maxEntries {
		c.sweep()
	}
	c.items[key] = entry{value: append([]byte(nil), value...), fetched: c.now()}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Memory) expired(e entry) bool {
	return c.now().Sub(e.fetched) > c.ttl
}

// sweep drops expired entries, then the oldest ones until there is room for
// one more. Callers hold the write lock.
func (c *Memory) sweep() {
	for key, e := range c.items {
		if c.expired(e) {
			delete(c.items, key)
		}
	}
	for len(c.items) >= maxEntries {
		var (
			oldest string
			at     time.Time
			found  bool
		)
		for key, e := range c.items {
			if !found || e.fetched.Before(at) {
				oldest, at, found = key, e.fetched, true
			}
		}
		delete(c.items, oldest)
	}
}

// Flush drops every cached payload.
func (c *Memory) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}
