// internal/conditionals/expr.go
package conditionals

import "github.com/civickit/civickit/internal/types"

/*
 * Conditional expression tree.
 *
 * Country configuration declares form behavior as data: field visibility,
 * enablement, and composite validation rules are boolean expressions over
 * the current form state. The tree is immutable once built; evaluation is
 * a pure function (see evaluate.go).
 *
 * Shape: composite nodes (and/or/not) are pure combinators with no side
 * effects; leaf nodes always compare a single named field path against a
 * constant operand. Builders below are the only intended construction
 * path - configuration JSON decodes through the codec in json.go, which
 * rejects shapes the builders cannot produce.
 */

// Op identifies an expression node kind.
type Op int

const (
	OpUnspecified Op = iota
	OpAnd
	OpOr
	OpNot
	OpEquals
	OpDateAfter
	OpDateBefore
	OpUndefined
	OpInArray
)

// Expr is one node of a conditional expression tree.
// Composite ops use Clauses (not holds exactly one); leaf comparisons use
// Field plus Value or Values. Values outside the active op are ignored.
type Expr struct {
	Op      Op
	Clauses []Expr
	Field   types.FieldID
	Value   any
	Values  []any
}

// And is true iff every clause is true. And() with no clauses is true.
func And(clauses ...Expr) Expr {
	return Expr{Op: OpAnd, Clauses: clauses}
}

// Or is true iff at least one clause is true. Or() with no clauses is false.
func Or(clauses ...Expr) Expr {
	return Expr{Op: OpOr, Clauses: clauses}
}

// Not negates the given expression.
func Not(clause Expr) Expr {
	return Expr{Op: OpNot, Clauses: []Expr{clause}}
}

// FieldRef anchors a leaf comparison to one field path.
type FieldRef struct {
	field types.FieldID
}

// Field starts a leaf comparison against the named form value.
// The path may be dotted ("applicant.dob"); it resolves against the flat
// form value map, never through nested structures.
func Field(id types.FieldID) FieldRef {
	return FieldRef{field: id}
}

// IsEqualTo compares the form value strictly against v.
// A missing path never equals anything, including nil.
func (f FieldRef) IsEqualTo(v any) Expr {
	return Expr{Op: OpEquals, Field: f.field, Value: v}
}

// IsUndefined is true iff the path has no stored value at all.
// An explicit nil or empty string is defined and therefore false.
func (f FieldRef) IsUndefined() Expr {
	return Expr{Op: OpUndefined, Field: f.field}
}

// InArray is true iff the form value strictly equals one of values.
func (f FieldRef) InArray(values ...any) Expr {
	return Expr{Op: OpInArray, Field: f.field, Values: values}
}

// DateRef is a partially built date comparison awaiting its operand.
type DateRef struct {
	field types.FieldID
	op    Op
}

// IsAfter begins a date comparison that is true when the form value is on
// or after the operand date. The boundary is INCLUSIVE despite the name;
// shipped configurations depend on the inclusive reading, so it is kept
// and pinned by TestEvaluate_DateBoundsBothInclusive.
func (f FieldRef) IsAfter() DateRef {
	return DateRef{field: f.field, op: OpDateAfter}
}

// IsBefore begins a date comparison that is true when the form value is on
// or before the operand date. Also INCLUSIVE; see IsAfter.
func (f FieldRef) IsBefore() DateRef {
	return DateRef{field: f.field, op: OpDateBefore}
}

// Date completes the comparison with a normalized YYYY-MM-DD operand.
// Normalized ISO dates compare correctly as plain strings.
func (d DateRef) Date(iso string) Expr {
	return Expr{Op: d.op, Field: d.field, Value: iso}
}

// Depth returns the height of the expression tree. Leaves have depth 1.
func (e Expr) Depth() int {
	max := 0
	for _, c := range e.Clauses {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}
