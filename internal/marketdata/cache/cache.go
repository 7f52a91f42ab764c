package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"stockfolio/internal/marketdata"
)

// DefaultTTL is how long a stored search result set stays readable.
const DefaultTTL = 5 * time.Minute

// SearchCache is a time-bounded cache of search results keyed by the raw,
// case-preserving query string. Keys are compared by exact equality; callers
// normalize beforehand if they want to. Entries age out lazily on read (the
// backing store is built without a janitor), and there is no size bound.
type SearchCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

// New returns a SearchCache with the given TTL, or DefaultTTL if ttl <= 0.
func New(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{
		ttl: ttl,
		// cleanup interval 0: expired entries are dropped on read, never swept
		store: gocache.New(ttl, 0),
	}
}

// Get returns the stored result sequence for query if present and not expired.
// The returned slice is the one that was stored; callers must treat it as
// read-only.
func (c *SearchCache) Get(query string) ([]marketdata.SearchResult, bool) {
	v, ok := c.store.Get(query)
	if !ok {
		return nil, false
	}
	return v.([]marketdata.SearchResult), true
}

// Put stores results for query with the current timestamp, overwriting any
// prior entry for that key.
func (c *SearchCache) Put(query string, results []marketdata.SearchResult) {
	c.store.Set(query, results, c.ttl)
}
