package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds a cached value with its timestamp.
type cacheEntry struct {
	value     string
	timestamp time.Time
}

// Memory is a thread-safe in-memory cache with TTL support and a
// per-key single-flight gate: two concurrent requests for the same
// in-flight key share one computation instead of both reaching the
// backend.
type Memory struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	group singleflight.Group
}

// NewMemory creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewMemory(ttlSeconds int) *Memory {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0 // No expiration
	}
	return &Memory{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.ttl > 0 && time.Since(entry.timestamp) > c.ttl {
		// Entry expired - clean it up.
		c.mu.Lock()
		delete(c.cache, key)
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *Memory) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		value:     value,
		timestamp: time.Now(),
	}
	return nil
}

// GetOrCompute returns the cached value for key, computing it at most
// once per key among concurrent callers.
func (c *Memory) GetOrCompute(key string, compute func() (string, error)) (string, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check: a previous flight may have stored the value
		// between our miss and joining the group.
		if cached, ok := c.Get(key); ok {
			return cached, nil
		}
		result, err := compute()
		if err != nil {
			return "", err
		}
		_ = c.Set(key, result)
		return result, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// Entries returns all non-expired entries as key-value pairs.
// This is used for cache export.
func (c *Memory) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string)
	now := time.Now()

	for key, entry := range c.cache {
		if c.ttl > 0 && now.Sub(entry.timestamp) > c.ttl {
			continue
		}
		result[key] = entry.value
	}

	return result
}

// Verify Memory implements TranslationCache
var _ TranslationCache = (*Memory)(nil)
