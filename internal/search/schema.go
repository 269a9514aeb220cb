// internal/search/schema.go
package search

import (
	"encoding/json"
	"fmt"
)

/*
 * Trust-boundary parsing for serialized queries.
 *
 * Saved queries arrive over the wire from configuration tooling and from
 * search UIs; neither is trusted. SafeParse reports every structural
 * problem it finds instead of failing on the first, so configuration
 * authors get a complete diagnosis in one round trip. Parse is the
 * error-returning form for callers that only need pass/fail.
 */

// Issue is one structural problem found while parsing a query.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ParseResult is the outcome of SafeParseQuery: either a valid query or
// the accumulated issues, never both.
type ParseResult struct {
	Success bool    `json:"success"`
	Value   *Query  `json:"value,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

// SafeParseQuery decodes and structurally validates untrusted query
// JSON. Decoding errors and shape violations both surface as issues.
func SafeParseQuery(data []byte) ParseResult {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return ParseResult{Issues: []Issue{{Path: "$", Message: err.Error()}}}
	}
	return SafeValidate(q)
}

// SafeValidate structurally validates an already-decoded query.
func SafeValidate(q Query) ParseResult {
	var issues []Issue
	q.validate("$", &issues)
	if len(issues) > 0 {
		return ParseResult{Issues: issues}
	}
	return ParseResult{Success: true, Value: &q}
}

// ParseQuery is SafeParseQuery for callers that want an error. The
// error message carries the first issue; the rest are dropped.
func ParseQuery(data []byte) (Query, error) {
	res := SafeParseQuery(data)
	if !res.Success {
		return Query{}, fmt.Errorf("invalid query: %s", res.Issues[0])
	}
	return *res.Value, nil
}
