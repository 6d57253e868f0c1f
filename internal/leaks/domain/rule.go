package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SuppressionRule represents a single suppression pattern.
//
// Notes:
// - Pattern is a Go regular expression, matched unanchored and case-sensitive
//   anywhere inside a leak block's newline-joined text.
// - Source should identify where the rule came from ("builtin", "env", ...).
// - AddedAt records when the rule was ingested.
type SuppressionRule struct {
	Pattern string    // regular expression source text
	Source  string    // rule origin identifier
	AddedAt time.Time // ingestion timestamp

	re *regexp.Regexp // compiled form, set by the constructor
}

// NewSuppressionRule compiles pattern and constructs a validated rule.
func NewSuppressionRule(pattern, source string, addedAt time.Time) (SuppressionRule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return SuppressionRule{}, fmt.Errorf("rule pattern must not be empty")
	}
	if strings.TrimSpace(source) == "" {
		return SuppressionRule{}, fmt.Errorf("rule source must not be empty")
	}
	if addedAt.IsZero() {
		return SuppressionRule{}, fmt.Errorf("rule addedAt must be set")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return SuppressionRule{}, fmt.Errorf("invalid rule pattern %q: %w", pattern, err)
	}
	return SuppressionRule{
		Pattern: pattern,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
		re:      re,
	}, nil
}

// Matches reports whether the rule's pattern occurs anywhere in text.
// A zero-value rule (never compiled) matches nothing.
func (r SuppressionRule) Matches(text string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(text)
}
