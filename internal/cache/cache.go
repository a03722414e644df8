// Package cache memoises derived results keyed by kind, manager and
// gameweek, outside the pure engine packages.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/quantti/tapas-fpl-app/internal/metrics"
)

// SchemaVersion is bumped when a cached value's shape changes.
const SchemaVersion = "1"

// Kinds of cached results.
const (
	KindLivePoints    = "live_points"
	KindFreeTransfers = "free_transfers"
	KindChips         = "chips"
	KindTemplate      = "template"
	KindRecommend     = "recommend"
	KindCompare       = "compare"
	KindSnapshot      = "snapshot"
)

// Key identifies one cached result. Manager is 0 for league- or
// gameweek-wide values and may carry a league id for league-scoped kinds.
type Key struct {
	Kind     string
	Manager  int
	Gameweek int
	// Extra disambiguates kinds with further inputs, e.g. a second manager.
	Extra string
}

func (k Key) String() string {
	return fmt.Sprintf("v%s:%s:%d:%d:%s", SchemaVersion, k.Kind, k.Manager, k.Gameweek, k.Extra)
}

type Cache struct {
	lru   *expirable.LRU[Key, any]
	group singleflight.Group
}

func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[Key, any](size, nil, ttl)}
}

func (c *Cache) Get(k Key) (any, bool) {
	v, ok := c.lru.Get(k)
	result := metrics.ResultMiss
	if ok {
		result = metrics.ResultHit
	}
	metrics.CacheLookups.WithLabelValues(k.Kind, result).Inc()
	return v, ok
}

func (c *Cache) Set(k Key, v any) {
	c.lru.Add(k, v)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// PurgeGameweek drops every entry for gw and returns how many went.
func (c *Cache) PurgeGameweek(gw int) int {
	n := 0
	for _, k := range c.lru.Keys() {
		if k.Gameweek == gw && c.lru.Remove(k) {
			n++
		}
	}
	return n
}

func (c *Cache) Purge() {
	c.lru.Purge()
}

// Memo returns the cached value for k or computes, stores and returns it.
// Concurrent callers for the same key share one computation. Errors are
// not cached.
func Memo[T any](c *Cache, k Key, fn func() (T, error)) (T, error) {
	if c == nil {
		return fn()
	}
	if v, ok := c.Get(k); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		t, err := fn()
		if err != nil {
			return nil, err
		}
		c.Set(k, t)
		return t, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
