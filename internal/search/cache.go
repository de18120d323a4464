package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"ideaforge/internal/types"
)

// cacheEntry holds a cached search result.
type cacheEntry struct {
	hits      []types.SearchHit
	createdAt time.Time
	expiresAt time.Time
}

// Cache is an in-memory TTL cache of search results. When full, the oldest
// entry is evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a new cache with the given size limit and TTL.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached hits for query.
func (c *Cache) Get(query string) ([]types.SearchHit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[hashKey(query)]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return append([]types.SearchHit(nil), entry.hits...), true
}

// Set stores hits for query.
func (c *Cache) Set(query string, hits []types.SearchHit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashKey(query)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		hits:      append([]types.SearchHit(nil), hits...),
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Size returns the number of entries in the cache.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry (by creation time).
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// hashKey creates a cache key from arbitrary inputs.
func hashKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
