package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is an in-process key/value store with per-entry TTL and
// glob-pattern bulk eviction. It is safe for concurrent use; mutating
// operations take the write lock so no reader observes a half-evicted
// pattern.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    uint64
	misses  uint64
	now     func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	KeyCount int    `json:"key_count"`
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key. An entry past its TTL behaves as
// absent; it is evicted lazily on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	expired := ok && c.now().After(e.expiresAt)
	c.mu.RUnlock()

	if !ok || expired {
		c.mu.Lock()
		if expired {
			// Re-check under the write lock; a concurrent Set may have
			// refreshed the entry.
			if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Set stores value under key for the given TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeletePattern removes every key whose full name matches the glob
// pattern (with '*' wildcards) and returns how many were removed. The
// scan and removal happen under one write lock.
func (c *Cache) DeletePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if matchGlob(pattern, key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// matchGlob matches the full key against a pattern where '*' matches any
// run of characters. Every other character matches literally, so keys may
// contain '/', '[' and other bytes path.Match would trip over.
func matchGlob(pattern, key string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == key
	}
	if !strings.HasPrefix(key, parts[0]) {
		return false
	}
	key = key[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(key, part)
		if idx < 0 {
			return false
		}
		key = key[idx+len(part):]
	}
	return strings.HasSuffix(key, parts[len(parts)-1])
}

// Stats reports hit/miss counters and the resident key count. Expired
// but not yet evicted keys are excluded from the count so callers see
// the same view Get would give them.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	now := c.now()
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			count++
		}
	}
	return Stats{Hits: c.hits, Misses: c.misses, KeyCount: count}
}
