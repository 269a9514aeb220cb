// internal/conditionals/evaluate.go
package conditionals

import (
	"fmt"

	"github.com/civickit/civickit/internal/types"
)

/*
 * Conditional expression evaluation.
 *
 * Pure recursive-descent interpretation of an Expr against the evaluation
 * context. No side effects, no I/O: the UI layer calls this on every
 * keystroke, so everything here stays allocation-free on the hot path.
 *
 * Semantics:
 *   - and([])  -> true, or([]) -> false
 *   - isEqualTo: strict equality, missing path treated as undefined and
 *     never coerced
 *   - isAfter/isBefore: INCLUSIVE lexicographic comparison on normalized
 *     YYYY-MM-DD strings (both bounds; pinned behavior, see expr.go)
 *   - isUndefined: true only for an absent path (nil and "" are defined)
 *   - inArray: strict equality against each element
 *
 * Failure model: unresolved field paths yield undefined, never an error.
 * A malformed node shape is a programming error and panics; the builders
 * and the JSON codec make such shapes unreachable from configuration.
 */

// Parameters is the read-only evaluation context, reconstructed per call.
// Form carries current (visible) form values, Now the normalized current
// date, User the authenticated user's context when a rule needs it.
type Parameters struct {
	Form types.FormData
	Now  string
	User map[string]any
}

// Evaluate interprets the expression against the parameter bag.
// Deterministic pure function of its inputs.
func Evaluate(e Expr, p Parameters) bool {
	switch e.Op {
	case OpAnd:
		for _, c := range e.Clauses {
			if !Evaluate(c, p) {
				return false
			}
		}
		return true

	case OpOr:
		for _, c := range e.Clauses {
			if Evaluate(c, p) {
				return true
			}
		}
		return false

	case OpNot:
		if len(e.Clauses) != 1 {
			panic(fmt.Sprintf("conditionals: not node with %d clauses", len(e.Clauses)))
		}
		return !Evaluate(e.Clauses[0], p)

	case OpEquals:
		v, ok := p.Form[e.Field]
		return ok && looseEqual(v, e.Value)

	case OpDateAfter:
		s, ok := dateValue(p.Form, e.Field)
		iso, _ := e.Value.(string)
		return ok && s >= iso

	case OpDateBefore:
		s, ok := dateValue(p.Form, e.Field)
		iso, _ := e.Value.(string)
		return ok && s <= iso

	case OpUndefined:
		return !p.Form.Has(e.Field)

	case OpInArray:
		v, ok := p.Form[e.Field]
		if !ok {
			return false
		}
		for _, elem := range e.Values {
			if looseEqual(v, elem) {
				return true
			}
		}
		return false

	default:
		panic(fmt.Sprintf("conditionals: unknown operator %d", e.Op))
	}
}

// dateValue resolves a field to its string form for date comparison.
// Non-string values never satisfy a date comparison.
func dateValue(form types.FormData, id types.FieldID) (string, bool) {
	v, ok := form[id]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// looseEqual performs strict equality with numeric type normalization.
// Form values decoded from JSON arrive as float64 while configuration may
// declare int operands; both spell the same number.
func looseEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	return a == b
}

// asNumbers attempts to convert both values to float64 for comparison.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts numeric types produced by JSON unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
