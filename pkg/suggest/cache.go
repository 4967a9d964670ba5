package suggest

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
)

// ResultCache maps a trimmed query to its last successful, non-empty SuggestionSet.
// Entries live for the lifetime of the cache: no expiry and no eviction.
type ResultCache struct {
	entries *cache.Cache
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	// no janitor, nothing ever expires
	return &ResultCache{entries: cache.New(cache.NoExpiration, 0)}
}

// IsCached reports whether query has a stored result.
func (rc *ResultCache) IsCached(query string) bool {
	_, found := rc.entries.Get(query)
	return found
}

// Get returns a copy of the stored set for query.
func (rc *ResultCache) Get(query string) (SuggestionSet, bool) {
	x, found := rc.entries.Get(query)
	if !found {
		rc.misses.Add(1)
		return SuggestionSet{}, false
	}
	rc.hits.Add(1)
	return x.(SuggestionSet).clone(), true
}

// Put stores set under query. Empty sets are never stored so a transient
// empty answer doesn't stick.
func (rc *ResultCache) Put(query string, set SuggestionSet) {
	if query == "" || set.IsEmpty() {
		return
	}
	rc.entries.Set(query, set.aligned().clone(), cache.NoExpiration)
	log.Debugf("Cached %d suggestions for '%s'", set.Len(), query)
}

// Len returns the number of cached queries.
func (rc *ResultCache) Len() int {
	return rc.entries.ItemCount()
}

// Stats returns counters for debugging output.
func (rc *ResultCache) Stats() map[string]int {
	return map[string]int{
		"cachedQueries": rc.entries.ItemCount(),
		"cacheHits":     int(rc.hits.Load()),
		"cacheMisses":   int(rc.misses.Load()),
	}
}
