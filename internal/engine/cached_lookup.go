package engine

import (
	"strconv"
	"time"

	"github.com/mselser95/polymarket-backtest/pkg/cache"
	"github.com/mselser95/polymarket-backtest/pkg/types"
)

// CachedBookLookup memoizes (token_id, timestamp) snapshot lookups
// against an underlying BookLookup, avoiding repeated map traversal for
// the same key within and across splits.
type CachedBookLookup struct {
	underlying BookLookup
	cache      cache.Cache
	ttl        time.Duration
}

// NewCachedBookLookup wraps underlying with cache, memoizing lookups
// for ttl (a backtest run is finite, so ttl need only exceed the run's
// wall-clock duration; it exists because cache.Cache requires one).
func NewCachedBookLookup(underlying BookLookup, c cache.Cache, ttl time.Duration) *CachedBookLookup {
	return &CachedBookLookup{underlying: underlying, cache: c, ttl: ttl}
}

// Snapshot returns the book snapshot for tokenID at timestamp, serving
// from cache when available.
func (c *CachedBookLookup) Snapshot(tokenID string, timestamp time.Time) (types.BookSnapshot, bool) {
	key := tokenID + "|" + strconv.FormatInt(timestamp.UnixNano(), 10)

	if cached, ok := c.cache.Get(key); ok {
		snap, ok := cached.(types.BookSnapshot)
		return snap, ok
	}

	snap, ok := c.underlying.Snapshot(tokenID, timestamp)
	if ok {
		c.cache.Set(key, snap, c.ttl)
	}
	return snap, ok
}
