package suppressions

import "github.com/haukened/leaksift/internal/leaks/domain"

// DecisionCache caches suppression decisions by block text with basic metrics.
// The same allocation site leaks the same block text run after run, so even a
// small cache short-circuits most regex evaluation.
type DecisionCache interface {
	Get(text string) (domain.SuppressionDecision, bool)
	Put(text string, d domain.SuppressionDecision)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}
