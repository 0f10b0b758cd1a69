package auth

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes network-backed credentials keyed by (method, scope). It is
// explicitly constructed and injected into the Manager rather than hidden in a
// package global, so tests can seed or empty it at will. One entry per key;
// writes are last-write-wins.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates an empty credential cache.
func NewCache() *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func cacheKey(method Method, scope string) string {
	return string(method) + "|" + scope
}

// Get returns a cached credential when present and still valid. An expired
// entry is evicted lazily here, never returned.
func (c *Cache) Get(method Method, scope string) (Credential, bool) {
	raw, found := c.store.Get(cacheKey(method, scope))
	if !found {
		return Credential{}, false
	}
	cred, ok := raw.(Credential)
	if !ok {
		return Credential{}, false
	}
	if !cred.Valid(time.Now()) {
		c.store.Delete(cacheKey(method, scope))
		return Credential{}, false
	}
	return cred, true
}

// Set stores a credential, bounding the entry lifetime by the credential's own
// expiry so the backing store can also reclaim it.
func (c *Cache) Set(method Method, scope string, cred Credential) {
	ttl := gocache.NoExpiration
	if !cred.ExpiresAt.IsZero() {
		remaining := time.Until(cred.ExpiresAt)
		if remaining <= 0 {
			return
		}
		ttl = remaining
	}
	c.store.Set(cacheKey(method, scope), cred, ttl)
}
