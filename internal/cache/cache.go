// Package cache provides a fixed-capacity, time-expiring in-memory cache.
package cache

import (
	"sync"
	"time"
)

// Cache is a process-wide key/value cache with a bounded size and per-entry TTL.
// Expired entries are treated as misses and reaped by a background goroutine.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	maxSize int
	ttl     time.Duration
	done    chan struct{}
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// New creates a cache holding at most maxSize entries, each expiring after ttl.
// A background cleanup goroutine runs until Stop is called.
func New[T any](maxSize int, ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		entries: make(map[string]entry[T]),
		maxSize: maxSize,
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's TTL. When the cache is full the
// entry closest to expiry is evicted to make room.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Delete removes key from the cache.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries currently stored, including any that have
// expired but not yet been reaped.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CleanExpired removes all expired entries and returns how many were removed.
func (c *Cache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stop signals the background cleanup goroutine to exit.
func (c *Cache[T]) Stop() {
	close(c.done)
}

func (c *Cache[T]) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.CleanExpired()
		}
	}
}
