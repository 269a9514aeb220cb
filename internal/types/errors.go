package types

import "errors"

// Sentinel errors for Civickit operations.
var (
	// ErrExpressionTooDeep indicates a conditional or query tree exceeds
	// MaxExpressionDepth.
	ErrExpressionTooDeep = errors.New("expression exceeds maximum depth")

	// ErrTooManyValues indicates an inArray/anyOf operand list exceeds
	// MaxInArrayValues.
	ErrTooManyValues = errors.New("operand list has too many values")

	// ErrTooManyFields indicates an event declares more than
	// MaxFieldsPerEvent field configs.
	ErrTooManyFields = errors.New("event declares too many fields")

	// ErrTooManyClauses indicates a search expression exceeds
	// MaxQueryClauses or-clauses.
	ErrTooManyClauses = errors.New("search expression has too many clauses")

	// ErrDuplicateFieldID indicates two fields of the same event share an ID.
	ErrDuplicateFieldID = errors.New("duplicate field id within event")

	// ErrUnknownFieldType indicates a field config declares a type with no
	// registered validator. Configuration defect, not user input.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrUnknownOperator indicates an unrecognized expression operator tag.
	ErrUnknownOperator = errors.New("unknown expression operator")

	// ErrUnsupportedUserField indicates a query placeholder names a user
	// field the resolver cannot supply from the user record.
	ErrUnsupportedUserField = errors.New("unsupported user field placeholder")

	// ErrEventNotFound indicates no configuration is stored for the
	// requested event type.
	ErrEventNotFound = errors.New("event configuration not found")

	// ErrQueryNotFound indicates no saved query exists for the given ID.
	ErrQueryNotFound = errors.New("saved query not found")
)
