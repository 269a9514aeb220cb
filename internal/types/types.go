// Package types provides domain models shared across Civickit components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so that embedding SDKs stay small. ID utilities in ids.go import
// uuid but are isolated for selective inclusion.
package types

// EventType identifies a registrable life event category (birth, death,
// marriage, membership). Country configuration declares one form per event
// type; the value is the key under which its field configs are stored.
type EventType string

// FieldID addresses one input inside an event's field namespace.
// May contain a parent-scoped dotted path such as "applicant.dob".
// Immutable once declared; two fields of the same event never share an ID.
type FieldID string

// QueryID represents a UUIDv7 saved-query identifier.
// String alias enables type safety while maintaining JSON string serialization.
type QueryID string

// TranslationMessage is a message descriptor handed to the UI layer.
// ID is a stable message catalog key; Props carries interpolation values
// (boundary numbers, expected lengths). Localization itself is out of
// scope; the engine only emits descriptors.
type TranslationMessage struct {
	ID    string         `json:"id"`
	Props map[string]any `json:"props,omitempty"`
}

// FormData holds the current values of a form keyed by field ID.
// A key that is absent means the field never held a value; a key present
// with nil means the field was explicitly cleared. The distinction matters
// for isUndefined conditionals.
type FormData map[FieldID]any

// Has reports whether the field has any stored value, including nil.
func (f FormData) Has(id FieldID) bool {
	_, ok := f[id]
	return ok
}

// Resource limits enforced when loading country configuration and parsing
// search expressions. Configuration is trusted in shape but not in size;
// these bounds cap evaluation cost per request.
const (
	// MaxExpressionDepth prevents stack exhaustion during recursive
	// evaluation of conditional and query trees. 16 levels handles any
	// realistic form rule.
	MaxExpressionDepth = 16

	// MaxInArrayValues limits inArray/anyOf operand lists to keep
	// membership checks linear in a small constant.
	MaxInArrayValues = 64

	// MaxFieldsPerEvent bounds the size of a single event's field list.
	// The largest shipped country forms stay well under 256 inputs.
	MaxFieldsPerEvent = 256

	// MaxQueryClauses bounds the number of or-clauses in one search
	// expression.
	MaxQueryClauses = 32
)
