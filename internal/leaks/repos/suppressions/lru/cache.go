package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/leaksift/internal/leaks/domain"
	"github.com/haukened/leaksift/internal/leaks/repos/suppressions"
)

// decisionCache is an LRU-backed implementation of suppressions.DecisionCache.
// Keys are whole block texts; identical leak blocks recur whenever the same
// allocation site fires more than once, so hit rates are high in practice.
type decisionCache struct {
	lru       *lru.Cache[string, domain.SuppressionDecision]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is a no-op DecisionCache used when size <= 0.
type disabledCache struct{}

// New creates a DecisionCache with the given capacity. If size <= 0, a
// disabled no-op cache is returned that always misses and tracks no metrics.
func New(size int) (suppressions.DecisionCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	var dc decisionCache
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.SuppressionDecision) {
		atomic.AddUint64(&dc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	dc.lru = cache
	return &dc, nil
}

// Get looks up a decision by block text, counting hits and misses.
func (c *decisionCache) Get(text string) (domain.SuppressionDecision, bool) {
	if d, ok := c.lru.Get(text); ok {
		atomic.AddUint64(&c.hits, 1)
		return d, true
	}
	atomic.AddUint64(&c.misses, 1)
	return domain.SuppressionDecision{}, false
}

// Put stores a decision by block text.
func (c *decisionCache) Put(text string, d domain.SuppressionDecision) {
	c.lru.Add(text, d)
}

// Len returns the number of entries in the cache.
func (c *decisionCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *decisionCache) Purge() { c.lru.Purge() }

// Stats returns cumulative hit/miss/eviction counters.
func (c *decisionCache) Stats() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

// disabledCache implementation

func (d *disabledCache) Get(string) (domain.SuppressionDecision, bool) {
	return domain.SuppressionDecision{}, false
}

func (d *disabledCache) Put(string, domain.SuppressionDecision) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }

var _ suppressions.DecisionCache = (*decisionCache)(nil)
var _ suppressions.DecisionCache = (*disabledCache)(nil)
