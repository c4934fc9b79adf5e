package intent

// Rule is a confidence threshold plus the action taken when it is met.
type Rule struct {
	Action    string  `json:"action"`
	Threshold float64 `json:"threshold"`
}

// Rule names for the primary categorical dimension.
const (
	RuleExplicitMention = "explicit_mention"
	RuleWeakMention     = "weak_mention"
	RuleNegation        = "negation"
)

// Thresholds are the graded confidence cutoffs applied by interpretation.
type Thresholds struct {
	Explicit float64
	Weak     float64
	Negation float64
}

// DefaultThresholds returns the compiled-in cutoffs used when no stored
// rule overrides them.
func DefaultThresholds() Thresholds {
	return Thresholds{Explicit: 0.8, Weak: 0.4, Negation: 0.9}
}
