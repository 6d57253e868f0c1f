package domain

// SuppressionDecision represents the outcome of evaluating a leak block
// against the configured suppression rules. Pure value type.
type SuppressionDecision struct {
	Suppressed bool   // true if any rule matched the block text
	Pattern    string // pattern of the matching rule, if any
	Source     string // source identifier of the matching rule, if any
}

// IsSuppressed is a convenience accessor.
func (d SuppressionDecision) IsSuppressed() bool { return d.Suppressed }

// KeepDecision returns a not-suppressed decision.
func KeepDecision() SuppressionDecision { return SuppressionDecision{Suppressed: false} }
