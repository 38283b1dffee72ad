package scraper

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// IdentityCache maps listing ids to canonical book ids. One instance is shared
// per process and entries are never invalidated or expired. The only removal
// is LRU eviction when a new id arrives at full capacity; the default capacity
// (config.IdentityCacheSize) is sized well above the listing ids a process
// resolves, so in practice a resolution is kept for the process lifetime.
type IdentityCache struct {
	entries *lru.Cache[int64, int64]
}

// NewIdentityCache creates a cache holding up to size resolutions.
func NewIdentityCache(size int) (*IdentityCache, error) {
	entries, err := lru.New[int64, int64](size)
	if err != nil {
		return nil, fmt.Errorf("create identity cache: %w", err)
	}
	return &IdentityCache{entries: entries}, nil
}

func (c *IdentityCache) Get(listingID int64) (int64, bool) {
	return c.entries.Get(listingID)
}

func (c *IdentityCache) Put(listingID, canonicalID int64) {
	c.entries.Add(listingID, canonicalID)
}

func (c *IdentityCache) Len() int {
	return c.entries.Len()
}
