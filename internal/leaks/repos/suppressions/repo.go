package suppressions

import (
	"sync/atomic"

	"github.com/haukened/leaksift/internal/leaks/common/log"
	"github.com/haukened/leaksift/internal/leaks/domain"
	"github.com/haukened/leaksift/internal/leaks/services/filter"
)

// Repository implements filter.Suppressor by evaluating an ordered rule list
// behind a DecisionCache. Rules are fixed at construction; first match wins.
type Repository struct {
	rules  []domain.SuppressionRule
	cache  DecisionCache
	logger log.Logger

	suppressed uint64
	kept       uint64
}

// NewRepository constructs a Repository. A nil logger defaults to noop.
// The cache is required; pass the disabled lru cache to opt out of caching.
func NewRepository(rules []domain.SuppressionRule, cache DecisionCache, logger log.Logger) *Repository {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Repository{
		rules:  rules,
		cache:  cache,
		logger: logger,
	}
}

// Decide returns the suppression decision for the given block text.
// Cached decisions are returned as-is; otherwise rules are evaluated in
// order and the result is cached.
func (r *Repository) Decide(text string) domain.SuppressionDecision {
	if d, ok := r.cache.Get(text); ok {
		r.count(d)
		return d
	}

	d := domain.KeepDecision()
	for _, rule := range r.rules {
		if rule.Matches(text) {
			d = domain.SuppressionDecision{
				Suppressed: true,
				Pattern:    rule.Pattern,
				Source:     rule.Source,
			}
			break
		}
	}

	r.cache.Put(text, d)
	r.count(d)
	return d
}

// Rules returns the number of configured rules.
func (r *Repository) Rules() int { return len(r.rules) }

// Stats returns repository counters and a cache snapshot.
func (r *Repository) Stats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	return RepoStats{
		Rules:      len(r.rules),
		Suppressed: atomic.LoadUint64(&r.suppressed),
		Kept:       atomic.LoadUint64(&r.kept),
		Cache: CacheStats{
			Size:      r.cache.Len(),
			Hits:      hits,
			Misses:    misses,
			Evictions: evictions,
		},
	}
}

func (r *Repository) count(d domain.SuppressionDecision) {
	if d.Suppressed {
		atomic.AddUint64(&r.suppressed, 1)
	} else {
		atomic.AddUint64(&r.kept, 1)
	}
}

var _ filter.Suppressor = (*Repository)(nil)
