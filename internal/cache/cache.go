// Package cache is a process-local read-through cache of backend state.
// Keys are hierarchical ("chat", "chat/sessions", "chat/sessions/<id>"):
// invalidating a parent key always invalidates every key nested under it,
// so a mutation can mark a whole subtree stale with one call.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Separator joins the segments of a hierarchical key.
const Separator = "/"

// Key builds a hierarchical cache key from its segments.
func Key(parts ...string) string {
	return strings.Join(parts, Separator)
}

type entry struct {
	value   any
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// Cache is safe for concurrent use. A zero TTL stores an entry that never
// expires on its own and must be invalidated explicitly.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false when the entry is absent
// or past its freshness window.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate marks key and everything nested under it stale, forcing the
// next read of any of them to refetch.
func (c *Cache) Invalidate(key string) {
	prefix := key + Separator
	c.mu.Lock()
	delete(c.entries, key)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Evict removes exactly one entry, leaving children alone.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every cached entry. Wired as the API client's invalidation
// hook: a signed-in identity change must never leak one user's cached
// results to another.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
