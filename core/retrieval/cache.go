package retrieval

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/docchat/docchat/model"
)

const (
	searchCacheSize = 256
	searchCacheTTL  = 30 * time.Minute
)

// SearchCache holds recent search responses keyed by search id so a
// later ask call can replay the same context without a new vector
// store query. Entries are evicted by LRU order and TTL.
type SearchCache struct {
	cache *expirable.LRU[string, *model.SearchResponse]
}

// NewSearchCache creates a cache with the default size and TTL
func NewSearchCache() *SearchCache {
	return &SearchCache{
		cache: expirable.NewLRU[string, *model.SearchResponse](searchCacheSize, nil, searchCacheTTL),
	}
}

// Put stores a search response under its search id
func (c *SearchCache) Put(response *model.SearchResponse) {
	c.cache.Add(response.SearchID, response)
}

// Get returns the cached response for the search id, if present
func (c *SearchCache) Get(searchID string) (*model.SearchResponse, bool) {
	return c.cache.Get(searchID)
}

// Len returns the number of cached responses
func (c *SearchCache) Len() int {
	return c.cache.Len()
}
