package session

// Package session holds the per-tab identity cache. The identity fetch
// against the provider carries real latency and rate-limit cost, so
// guarded navigations reuse the last-known identity until it ages past
// the freshness window. Staleness is evaluated lazily at decision time
// via IsFresh rather than by a background timer.

import (
	"sync"
	"time"

	domainauth "github.com/Hissaria17/alcrm-sub001/internal/domain/auth"
)

// DefaultFreshnessWindow is the maximum age of a cached identity before
// it must be re-fetched. Role changes are rare and are not expected to
// take effect mid-session instantly, so five minutes of staleness is an
// acceptable trade against fetch volume.
const DefaultFreshnessWindow = 5 * time.Minute

// Cache holds at most one Identity. All access goes through Set/Clear/
// Get under a mutex, so within one tab reads always observe the most
// recently completed mutation.
type Cache struct {
	mu        sync.Mutex
	identity  *domainauth.Identity
	window    time.Duration
	lastFetch time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithFreshnessWindow overrides the default freshness window. Values
// <= 0 keep the default.
func WithFreshnessWindow(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.window = d
		}
	}
}

// NewCache constructs an empty Cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{window: DefaultFreshnessWindow}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set replaces the cached identity. FetchedAt is kept monotone
// non-decreasing within the cache's lifetime: an identity carrying an
// older FetchedAt than one already observed is stored with the
// later timestamp, so a slow fetch completing out of order can never
// roll freshness backwards.
func (c *Cache) Set(identity domainauth.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if identity.FetchedAt.Before(c.lastFetch) {
		identity.FetchedAt = c.lastFetch
	} else {
		c.lastFetch = identity.FetchedAt
	}
	c.identity = &identity
}

// Clear drops the cached identity. Clearing an already-empty cache is a
// no-op, not an error.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = nil
}

// Get returns a copy of the cached identity and whether one is present.
func (c *Cache) Get() (domainauth.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return domainauth.Identity{}, false
	}
	return *c.identity, true
}

// IsFresh reports whether an identity is present and younger than the
// freshness window at the given time.
func (c *Cache) IsFresh(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return false
	}
	return now.Sub(c.identity.FetchedAt) < c.window
}
