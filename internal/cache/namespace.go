package cache

import (
	"time"

	"aircatalog/internal/metrics"
)

// Default TTLs per cache namespace. Name canonicalization is stable, so
// validation results live a full day; descriptions change even less.
const (
	ValidationTTL  = 24 * time.Hour
	DescriptionTTL = 7 * 24 * time.Hour
	SourceTTL      = time.Hour
)

// Namespace is a typed view over one logical sub-cache. Keys are
// prefixed with the namespace name, so Clear only evicts its own keys.
type Namespace struct {
	name string
	ttl  time.Duration
	c    *Cache
}

// NewNamespace creates a namespace with a fixed default TTL over the
// shared cache.
func NewNamespace(c *Cache, name string, ttl time.Duration) *Namespace {
	return &Namespace{name: name, ttl: ttl, c: c}
}

func (n *Namespace) Name() string { return n.name }

func (n *Namespace) key(key string) string {
	return n.name + ":" + key
}

func (n *Namespace) Get(key string) (any, bool) {
	v, ok := n.c.Get(n.key(key))
	if ok {
		metrics.CacheHits.WithLabelValues(n.name).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(n.name).Inc()
	}
	return v, ok
}

func (n *Namespace) Set(key string, value any) {
	n.c.Set(n.key(key), value, n.ttl)
}

// SetTTL stores a value with an explicit TTL overriding the namespace
// default.
func (n *Namespace) SetTTL(key string, value any, ttl time.Duration) {
	n.c.Set(n.key(key), value, ttl)
}

func (n *Namespace) Delete(key string) {
	n.c.Delete(n.key(key))
}

// Clear evicts every key belonging to this namespace and returns the
// number removed.
func (n *Namespace) Clear() int {
	return n.c.DeletePattern(n.name + ":*")
}
