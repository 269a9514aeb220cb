// internal/conditionals/visibility.go
package conditionals

/*
 * Field visibility and enablement resolution.
 *
 * A field config carries an ordered list of rules, each pairing a rule
 * type with a conditional expression. Each rule is evaluated
 * independently:
 *
 *   SHOW   - field is visible only while the conditional holds
 *   HIDE   - field is hidden while the conditional holds
 *   ENABLE - field is interactive only while the conditional holds
 *
 * Visibility gates whether the field contributes to validation and
 * output. Enablement gates interactivity only: a disabled-but-visible
 * field keeps its stored value. Hidden field values are likewise kept in
 * storage so a reappearing field restores prior input; exclusion of
 * hidden values from derived evaluation context happens one layer up
 * (see fields.VisibleValues), not here.
 */

// RuleType discriminates how a conditional gates its field.
type RuleType string

const (
	RuleEnable RuleType = "ENABLE"
	RuleShow   RuleType = "SHOW"
	RuleHide   RuleType = "HIDE"
)

// Rule pairs a gating type with its conditional expression.
type Rule struct {
	Type        RuleType `json:"type"`
	Conditional Expr     `json:"conditional"`
}

// IsVisible reports whether a field with the given rules is visible.
// Any HIDE rule evaluating true, or any SHOW rule evaluating false,
// hides the field. A field with no SHOW/HIDE rules is always visible.
func IsVisible(rules []Rule, p Parameters) bool {
	for _, r := range rules {
		switch r.Type {
		case RuleShow:
			if !Evaluate(r.Conditional, p) {
				return false
			}
		case RuleHide:
			if Evaluate(r.Conditional, p) {
				return false
			}
		}
	}
	return true
}

// IsEnabled reports whether a field with the given rules is interactive.
// Every ENABLE rule must hold; visibility rules do not affect enablement.
func IsEnabled(rules []Rule, p Parameters) bool {
	for _, r := range rules {
		if r.Type == RuleEnable && !Evaluate(r.Conditional, p) {
			return false
		}
	}
	return true
}
