// internal/search/query.go
package search

import (
	"encoding/json"
	"fmt"

	"github.com/civickit/civickit/internal/types"
)

/*
 * Serializable search query algebra.
 *
 * Advanced search sections in country configuration describe predicates
 * over registered events as data. A query is stored and shipped in its
 * serialized form; leaf values referring to the current user stay as
 * placeholders until deserialization (see userfield.go) binds them
 * against a concrete user record.
 *
 * Shape rules, enforced by Validate:
 *   - and/or combinators exist ONLY at the whole-query level. A leaf
 *     condition is never an or of conditions; the asymmetry is part of
 *     the wire contract and consumers depend on it.
 *   - an "or" query wraps a list of "and"-shaped clauses; nesting
 *     combinators deeper is rejected.
 *   - placeholders appear only where a literal string is valid (exact
 *     terms and within locations), never in the combinator shape.
 *
 * Wire compatibility requires exact discriminant fidelity: the type tags
 * below are consumed byte-for-byte by the search index client.
 */

// CondType discriminates a leaf condition.
type CondType string

const (
	CondExact  CondType = "exact"
	CondFuzzy  CondType = "fuzzy"
	CondRange  CondType = "range"
	CondWithin CondType = "within"
	CondAnyOf  CondType = "anyOf"
	CondNot    CondType = "not"
)

// Combinator type tags for whole-query composition.
const (
	QueryAnd = "and"
	QueryOr  = "or"
)

// UserField names a property of the authenticated user that a serialized
// query may reference in place of a literal value.
type UserField string

const (
	UserFieldID                UserField = "id"
	UserFieldPrimaryOfficeID   UserField = "primaryOfficeId"
	UserFieldName              UserField = "name"
	UserFieldRole              UserField = "role"
	UserFieldSignatureFilename UserField = "signatureFilename"
)

// IsValid reports whether f is a declared user field name.
func (f UserField) IsValid() bool {
	switch f {
	case UserFieldID, UserFieldPrimaryOfficeID, UserFieldName, UserFieldRole, UserFieldSignatureFilename:
		return true
	}
	return false
}

// Value is a condition operand: either a literal string or a deferred
// reference to a user field. Exactly one side is set; the zero Value is
// an empty literal.
type Value struct {
	Literal   string
	UserField UserField
}

// Lit wraps a literal operand.
func Lit(s string) Value { return Value{Literal: s} }

// Deferred wraps a user-field placeholder operand.
func Deferred(f UserField) Value { return Value{UserField: f} }

// IsDeferred reports whether the value is an unresolved placeholder.
func (v Value) IsDeferred() bool { return v.UserField != "" }

// Wire forms: a literal is a bare JSON string, a placeholder is the
// object {"$userField": "<name>"}.
type userFieldJSON struct {
	UserField UserField `json:"$userField"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsDeferred() {
		return json.Marshal(userFieldJSON{UserField: v.UserField})
	}
	return json.Marshal(v.Literal)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var w userFieldJSON
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		if !w.UserField.IsValid() {
			return fmt.Errorf("user field %q: %w", w.UserField, types.ErrUnsupportedUserField)
		}
		*v = Value{UserField: w.UserField}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Value{Literal: s}
	return nil
}

// Condition is one leaf predicate. The Type tag selects which operand
// fields are meaningful; Validate rejects mixed or missing operands.
type Condition struct {
	Type CondType `json:"type"`

	// exact / fuzzy / not
	Term *Value `json:"term,omitempty"`

	// range, both bounds inclusive, either may be open
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`

	// within
	Location *Value `json:"location,omitempty"`

	// anyOf
	Terms []string `json:"terms,omitempty"`
}

// Exact matches the field exactly against term.
func Exact(term Value) *Condition { return &Condition{Type: CondExact, Term: &term} }

// Fuzzy matches the field approximately against term.
func Fuzzy(term string) *Condition {
	v := Lit(term)
	return &Condition{Type: CondFuzzy, Term: &v}
}

// Range matches values between gte and lte inclusive. An empty bound
// leaves that side open.
func Range(gte, lte string) *Condition { return &Condition{Type: CondRange, GTE: gte, LTE: lte} }

// Within matches records whose location falls under the given
// jurisdiction.
func Within(location Value) *Condition { return &Condition{Type: CondWithin, Location: &location} }

// AnyOf matches when the field equals any of terms.
func AnyOf(terms ...string) *Condition { return &Condition{Type: CondAnyOf, Terms: terms} }

// NotTerm matches when the field does not equal term.
func NotTerm(term string) *Condition {
	v := Lit(term)
	return &Condition{Type: CondNot, Term: &v}
}

func (c *Condition) validate(path string, issues *[]Issue) {
	add := func(format string, args ...any) {
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Type {
	case CondExact:
		if c.Term == nil {
			add("exact condition requires a term")
		}
	case CondFuzzy, CondNot:
		if c.Term == nil {
			add("%s condition requires a term", c.Type)
		} else if c.Term.IsDeferred() {
			add("%s condition does not accept a user field placeholder", c.Type)
		}
	case CondRange:
		if c.GTE == "" && c.LTE == "" {
			add("range condition requires at least one bound")
		}
	case CondWithin:
		if c.Location == nil {
			add("within condition requires a location")
		}
	case CondAnyOf:
		if len(c.Terms) == 0 {
			add("anyOf condition requires at least one term")
		} else if len(c.Terms) > types.MaxInArrayValues {
			add("anyOf condition exceeds %d terms: %v", types.MaxInArrayValues, types.ErrTooManyValues)
		}
	default:
		add("unknown condition type %q", c.Type)
	}
}

// clone returns an independent deep copy.
func (c *Condition) clone() *Condition {
	if c == nil {
		return nil
	}
	out := *c
	if c.Term != nil {
		t := *c.Term
		out.Term = &t
	}
	if c.Location != nil {
		l := *c.Location
		out.Location = &l
	}
	if c.Terms != nil {
		out.Terms = append([]string(nil), c.Terms...)
	}
	return &out
}

// DataNode is one entry of the open event-data predicate map: either a
// leaf condition or a further nested map keyed by field id segment.
// Nesting follows dotted field ids without flattening them.
type DataNode struct {
	Cond   *Condition
	Nested map[string]DataNode
}

func (n DataNode) MarshalJSON() ([]byte, error) {
	if n.Cond != nil {
		return json.Marshal(n.Cond)
	}
	return json.Marshal(n.Nested)
}

func (n *DataNode) UnmarshalJSON(data []byte) error {
	// A leaf carries the "type" discriminant; anything else is a deeper
	// record of the same shape.
	var probe struct {
		Type *CondType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type != nil {
		var c Condition
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*n = DataNode{Cond: &c}
		return nil
	}
	var nested map[string]DataNode
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	*n = DataNode{Nested: nested}
	return nil
}

func (n DataNode) validate(path string, issues *[]Issue) {
	switch {
	case n.Cond != nil && n.Nested != nil:
		*issues = append(*issues, Issue{Path: path, Message: "node is both a condition and a nested record"})
	case n.Cond != nil:
		n.Cond.validate(path, issues)
	case n.Nested != nil:
		for k, child := range n.Nested {
			child.validate(path+"."+k, issues)
		}
	default:
		*issues = append(*issues, Issue{Path: path, Message: "empty data node"})
	}
}

func (n DataNode) clone() DataNode {
	out := DataNode{Cond: n.Cond.clone()}
	if n.Nested != nil {
		out.Nested = make(map[string]DataNode, len(n.Nested))
		for k, child := range n.Nested {
			out.Nested[k] = child.clone()
		}
	}
	return out
}

// Predicates is the fixed metadata predicate set plus the open per-field
// data map. Every member is optional; absent predicates do not constrain
// the search.
type Predicates struct {
	Status            *Condition          `json:"status,omitempty"`
	CreatedAt         *Condition          `json:"createdAt,omitempty"`
	UpdatedAt         *Condition          `json:"updatedAt,omitempty"`
	CreatedAtLocation *Condition          `json:"createdAtLocation,omitempty"`
	UpdatedAtLocation *Condition          `json:"updatedAtLocation,omitempty"`
	AssignedTo        *Condition          `json:"assignedTo,omitempty"`
	CreatedBy         *Condition          `json:"createdBy,omitempty"`
	UpdatedBy         *Condition          `json:"updatedBy,omitempty"`
	TrackingID        *Condition          `json:"trackingId,omitempty"`
	Flags             *Condition          `json:"flags,omitempty"`
	Data              map[string]DataNode `json:"data,omitempty"`
}

// named returns the fixed predicates with their wire names, nil members
// included, for uniform walking.
func (p *Predicates) named() []struct {
	Name string
	Cond **Condition
} {
	return []struct {
		Name string
		Cond **Condition
	}{
		{"status", &p.Status},
		{"createdAt", &p.CreatedAt},
		{"updatedAt", &p.UpdatedAt},
		{"createdAtLocation", &p.CreatedAtLocation},
		{"updatedAtLocation", &p.UpdatedAtLocation},
		{"assignedTo", &p.AssignedTo},
		{"createdBy", &p.CreatedBy},
		{"updatedBy", &p.UpdatedBy},
		{"trackingId", &p.TrackingID},
		{"flags", &p.Flags},
	}
}

func (p *Predicates) validate(path string, issues *[]Issue) {
	for _, np := range p.named() {
		if c := *np.Cond; c != nil {
			c.validate(path+"."+np.Name, issues)
		}
	}
	for k, node := range p.Data {
		node.validate(path+".data."+k, issues)
	}
}

func (p Predicates) clone() Predicates {
	out := Predicates{}
	src := p.named()
	dst := out.named()
	for i := range src {
		*dst[i].Cond = (*src[i].Cond).clone()
	}
	if p.Data != nil {
		out.Data = make(map[string]DataNode, len(p.Data))
		for k, node := range p.Data {
			out.Data[k] = node.clone()
		}
	}
	return out
}

// Query is a whole serialized query expression: either a bare "and" of
// predicates, or an "or" over a list of "and"-shaped clauses.
type Query struct {
	Type    string  `json:"type"`
	Clauses []Query `json:"clauses,omitempty"`
	Predicates
}

// All builds an "and" query from its predicate set.
func All(p Predicates) Query {
	return Query{Type: QueryAnd, Predicates: p}
}

// Any builds an "or" query over the given "and" clauses.
func Any(clauses ...Query) Query {
	return Query{Type: QueryOr, Clauses: clauses}
}

func (q *Query) validate(path string, issues *[]Issue) {
	switch q.Type {
	case QueryAnd:
		if len(q.Clauses) != 0 {
			*issues = append(*issues, Issue{Path: path, Message: "and query must not carry clauses"})
		}
		q.Predicates.validate(path, issues)
	case QueryOr:
		if len(q.Clauses) == 0 {
			*issues = append(*issues, Issue{Path: path + ".clauses", Message: "or query requires at least one clause"})
			return
		}
		if len(q.Clauses) > types.MaxQueryClauses {
			*issues = append(*issues, Issue{
				Path:    path + ".clauses",
				Message: fmt.Sprintf("or query exceeds %d clauses: %v", types.MaxQueryClauses, types.ErrTooManyClauses),
			})
			return
		}
		for i, clause := range q.Clauses {
			clausePath := fmt.Sprintf("%s.clauses[%d]", path, i)
			if clause.Type != QueryAnd {
				*issues = append(*issues, Issue{Path: clausePath, Message: "or clauses must be and-shaped; combinators do not nest"})
				continue
			}
			clause.validate(clausePath, issues)
		}
	default:
		*issues = append(*issues, Issue{Path: path + ".type", Message: fmt.Sprintf("unknown query type %q", q.Type)})
	}
}

// Clone returns an independent deep copy of the query.
func (q Query) Clone() Query {
	out := Query{Type: q.Type, Predicates: q.Predicates.clone()}
	if q.Clauses != nil {
		out.Clauses = make([]Query, len(q.Clauses))
		for i, c := range q.Clauses {
			out.Clauses[i] = c.Clone()
		}
	}
	return out
}
