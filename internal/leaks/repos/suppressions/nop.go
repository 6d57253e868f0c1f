package suppressions

import (
	"github.com/haukened/leaksift/internal/leaks/domain"
	"github.com/haukened/leaksift/internal/leaks/services/filter"
)

// NopSuppressor keeps every block. Useful for tests and for running the
// wrapper as a plain capture tool.
type NopSuppressor struct{}

func (n *NopSuppressor) Decide(string) domain.SuppressionDecision {
	return domain.KeepDecision()
}

var _ filter.Suppressor = (*NopSuppressor)(nil)
