package filter

import "github.com/haukened/leaksift/internal/leaks/domain"

// Suppressor decides whether a leak block should be dropped from the output.
// The text argument is the block's newline-joined content, verbatim.
type Suppressor interface {
	Decide(text string) domain.SuppressionDecision
}
