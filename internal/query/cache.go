package query

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Result cache defaults.
const (
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheMaxEntries = 256
)

// ResultCache holds ranked results keyed by request fingerprint, with
// TTL expiry and LRU eviction on the size bound. Safe for concurrent
// use.
type ResultCache struct {
	lru *expirable.LRU[string, *RankedResult]
}

// NewResultCache creates a cache with the given TTL and entry bound.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &ResultCache{
		lru: expirable.NewLRU[string, *RankedResult](maxEntries, nil, ttl),
	}
}

// Get returns the cached result for a fingerprint, if present and
// unexpired.
func (c *ResultCache) Get(fingerprint string) (*RankedResult, bool) {
	return c.lru.Get(fingerprint)
}

// Put stores a result under its fingerprint.
func (c *ResultCache) Put(fingerprint string, result *RankedResult) {
	c.lru.Add(fingerprint, result)
}

// Len returns the number of live entries.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Purge drops all entries.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}
