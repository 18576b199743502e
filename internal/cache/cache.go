// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes fully-formatted search results so a repeated
// query bypasses both retrieval stages and fusion entirely. Capacity is
// fixed at construction; the least-recently-used entry is evicted when a
// new key arrives at capacity.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// Key identifies one cacheable query. Value equality: two requests hit
// the same entry only when the normalized query, method, and result bound
// all match, so methods never collide on the same query text.
type Key struct {
	Query  string
	Method types.Method
	TopK   int
}

// ResultCache is a bounded LRU over formatted result lists. It is safe
// for concurrent use; the recency structure is guarded inside the
// underlying lru.Cache.
type ResultCache struct {
	entries *lru.Cache[Key, []types.SearchResult]
}

// New creates a cache holding at most capacity entries.
func New(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	entries, err := lru.New[Key, []types.SearchResult](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &ResultCache{entries: entries}, nil
}

// Get returns the cached results for key, marking the entry
// most-recently-used on a hit.
func (c *ResultCache) Get(key Key) ([]types.SearchResult, bool) {
	return c.entries.Get(key)
}

// Put stores results under key, evicting the least-recently-used entry
// first when at capacity.
func (c *ResultCache) Put(key Key, results []types.SearchResult) {
	c.entries.Add(key, results)
}

// Len reports the current entry count.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}
