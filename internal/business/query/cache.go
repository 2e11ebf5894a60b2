package query

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pgstay/api/pkg/model"
	"github.com/pgstay/api/pkg/util"
)

// Snapshot is an immutable listing collection identified by a content fingerprint.
type Snapshot struct {
	Version  string
	Listings []model.Listing
}

// NewSnapshot fingerprints listings. The slice must not be modified afterwards.
func NewSnapshot(listings []model.Listing) Snapshot {
	return Snapshot{Version: util.HashListings(listings), Listings: listings}
}

// CacheStats reports memoization counters.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
	Version string
}

// Cache memoizes query results for a single snapshot version. Results computed
// against one snapshot are never served for another: a snapshot with a new
// version drops every entry. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	version    string
	entries    map[string]Result
	hits       int
	misses     int
}

// NewCache creates a cache holding at most maxEntries results.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Cache{maxEntries: maxEntries, entries: make(map[string]Result)}
}

// Query returns the memoized result for (criteria, mode, page) on snap,
// computing it on a miss.
func (c *Cache) Query(snap Snapshot, criteria Criteria, mode SortMode, page int) Result {
	mode = ParseSortMode(string(mode))
	key := fmt.Sprintf("%s#%s#%d", criteria.key(), mode, page)

	c.mu.Lock()
	if snap.Version != c.version {
		c.version = snap.Version
		clear(c.entries)
	}
	if res, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return cloneResult(res)
	}
	c.misses++
	c.mu.Unlock()

	res := Query(snap.Listings, criteria, mode, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have installed a newer snapshot meanwhile.
	if snap.Version != c.version {
		return res
	}
	if len(c.entries) >= c.maxEntries {
		clear(c.entries)
	}
	c.entries[key] = res
	return cloneResult(res)
}

// Stats returns a copy of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries), Version: c.version}
}

func cloneResult(r Result) Result {
	r.Items = slices.Clone(r.Items)
	return r
}
