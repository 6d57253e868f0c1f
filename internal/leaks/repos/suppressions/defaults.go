package suppressions

import (
	"time"

	"github.com/haukened/leaksift/internal/leaks/domain"
)

// builtinPatterns are leaks the tool is expected to ignore out of the box.
// Both originate inside macOS frameworks, beyond the profiled program's
// control.
var builtinPatterns = []string{
	// leaked by Cocoa during GLFW window destruction
	`NSArray.*CoreFoundation`,
	// leaked by Cocoa during GLFW event polling
	`AXObserverCookie.*HIServices`,
}

// DefaultRules returns the built-in suppression rules, timestamped with now.
// The patterns are known-good; a compile failure here is a programming error.
func DefaultRules(now time.Time) []domain.SuppressionRule {
	rules := make([]domain.SuppressionRule, 0, len(builtinPatterns))
	for _, p := range builtinPatterns {
		rule, err := domain.NewSuppressionRule(p, "builtin", now)
		if err != nil {
			panic("builtin suppression pattern failed to compile: " + p)
		}
		rules = append(rules, rule)
	}
	return rules
}
