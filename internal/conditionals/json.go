// internal/conditionals/json.go
package conditionals

import (
	"encoding/json"
	"fmt"

	"github.com/civickit/civickit/internal/types"
)

/*
 * JSON codec for conditional expressions.
 *
 * Country configuration ships conditionals as data, so the tree needs a
 * stable wire form. Discriminant tags:
 *
 *   {"type":"and","clauses":[...]}
 *   {"type":"or","clauses":[...]}
 *   {"type":"not","clause":{...}}
 *   {"type":"field","field":"x","comparison":"eq","value":...}
 *
 * Leaf comparison tags: eq, dateAfter, dateBefore, undefined, inArray.
 *
 * Decoding validates shape and resource limits (depth, inArray fan-out) so
 * that a structurally valid Expr is the only thing that can come out of
 * untrusted bytes. Encoding is total for builder-produced trees.
 */

type exprJSON struct {
	Type       string            `json:"type"`
	Clauses    []json.RawMessage `json:"clauses,omitempty"`
	Clause     json.RawMessage   `json:"clause,omitempty"`
	Field      types.FieldID     `json:"field,omitempty"`
	Comparison string            `json:"comparison,omitempty"`
	Value      any               `json:"value,omitempty"`
	Values     []any             `json:"values,omitempty"`
}

// MarshalJSON implements json.Marshaler with the tagged wire form above.
func (e Expr) MarshalJSON() ([]byte, error) {
	switch e.Op {
	case OpAnd, OpOr:
		tag := "and"
		if e.Op == OpOr {
			tag = "or"
		}
		clauses := make([]json.RawMessage, len(e.Clauses))
		for i, c := range e.Clauses {
			b, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			clauses[i] = b
		}
		if clauses == nil {
			clauses = []json.RawMessage{}
		}
		return json.Marshal(exprJSON{Type: tag, Clauses: clauses})

	case OpNot:
		if len(e.Clauses) != 1 {
			return nil, fmt.Errorf("not node requires exactly one clause, got %d", len(e.Clauses))
		}
		b, err := json.Marshal(e.Clauses[0])
		if err != nil {
			return nil, err
		}
		return json.Marshal(exprJSON{Type: "not", Clause: b})

	case OpEquals:
		return json.Marshal(exprJSON{Type: "field", Field: e.Field, Comparison: "eq", Value: e.Value})
	case OpDateAfter:
		return json.Marshal(exprJSON{Type: "field", Field: e.Field, Comparison: "dateAfter", Value: e.Value})
	case OpDateBefore:
		return json.Marshal(exprJSON{Type: "field", Field: e.Field, Comparison: "dateBefore", Value: e.Value})
	case OpUndefined:
		return json.Marshal(exprJSON{Type: "field", Field: e.Field, Comparison: "undefined"})
	case OpInArray:
		return json.Marshal(exprJSON{Type: "field", Field: e.Field, Comparison: "inArray", Values: e.Values})
	default:
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownOperator, e.Op)
	}
}

// UnmarshalJSON implements json.Unmarshaler, validating shape and limits.
func (e *Expr) UnmarshalJSON(data []byte) error {
	decoded, err := decodeExpr(data, 1)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// decodeExpr recursively decodes one node, tracking depth against
// types.MaxExpressionDepth.
func decodeExpr(data []byte, depth int) (Expr, error) {
	if depth > types.MaxExpressionDepth {
		return Expr{}, types.ErrExpressionTooDeep
	}

	var raw exprJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Expr{}, err
	}

	switch raw.Type {
	case "and", "or":
		op := OpAnd
		if raw.Type == "or" {
			op = OpOr
		}
		clauses := make([]Expr, 0, len(raw.Clauses))
		for _, c := range raw.Clauses {
			child, err := decodeExpr(c, depth+1)
			if err != nil {
				return Expr{}, err
			}
			clauses = append(clauses, child)
		}
		return Expr{Op: op, Clauses: clauses}, nil

	case "not":
		if len(raw.Clause) == 0 {
			return Expr{}, fmt.Errorf("not node missing clause")
		}
		child, err := decodeExpr(raw.Clause, depth+1)
		if err != nil {
			return Expr{}, err
		}
		return Expr{Op: OpNot, Clauses: []Expr{child}}, nil

	case "field":
		if raw.Field == "" {
			return Expr{}, fmt.Errorf("field comparison missing field path")
		}
		switch raw.Comparison {
		case "eq":
			return Expr{Op: OpEquals, Field: raw.Field, Value: raw.Value}, nil
		case "dateAfter", "dateBefore":
			iso, ok := raw.Value.(string)
			if !ok {
				return Expr{}, fmt.Errorf("date comparison on %q requires a string operand", raw.Field)
			}
			op := OpDateAfter
			if raw.Comparison == "dateBefore" {
				op = OpDateBefore
			}
			return Expr{Op: op, Field: raw.Field, Value: iso}, nil
		case "undefined":
			return Expr{Op: OpUndefined, Field: raw.Field}, nil
		case "inArray":
			if len(raw.Values) > types.MaxInArrayValues {
				return Expr{}, types.ErrTooManyValues
			}
			return Expr{Op: OpInArray, Field: raw.Field, Values: raw.Values}, nil
		default:
			return Expr{}, fmt.Errorf("%w: comparison %q", types.ErrUnknownOperator, raw.Comparison)
		}

	default:
		return Expr{}, fmt.Errorf("%w: node %q", types.ErrUnknownOperator, raw.Type)
	}
}
