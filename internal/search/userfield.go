// internal/search/userfield.go
package search

import (
	"fmt"

	"github.com/civickit/civickit/internal/types"
)

/*
 * User-field placeholder resolution.
 *
 * A stored query may defer some operands to "whoever runs this query":
 * the exact term of assignedTo/createdBy/updatedBy, and the location of
 * createdAtLocation/updatedAtLocation. DeserializeQuery binds those
 * placeholders against one user record and returns an executable query
 * with no placeholders left.
 *
 * Resolution is total: every declared UserField either maps to a user
 * record property or fails with ErrUnsupportedUserField. It never falls
 * back to a stand-in value, and it never mutates its inputs; callers
 * may deserialize the same stored query for many users concurrently.
 */

// UserContext is the slice of the authenticated user's record that query
// resolution may read. It is supplied per request and never stored
// inside a query.
type UserContext struct {
	ID              string `json:"id"`
	PrimaryOfficeID string `json:"primaryOfficeId"`
}

// ResolveUserField maps a placeholder name to the user's value for it.
// Fields without a resolvable backing property (name, role,
// signatureFilename are declared on the wire but carry no counterpart in
// UserContext) fail with ErrUnsupportedUserField.
func ResolveUserField(f UserField, user UserContext) (string, error) {
	switch f {
	case UserFieldID:
		return user.ID, nil
	case UserFieldPrimaryOfficeID:
		return user.PrimaryOfficeID, nil
	case UserFieldName, UserFieldRole, UserFieldSignatureFilename:
		return "", fmt.Errorf("user field %q: %w", f, types.ErrUnsupportedUserField)
	default:
		return "", fmt.Errorf("user field %q: %w", f, types.ErrUnsupportedUserField)
	}
}

// DeserializeQuery returns a deep copy of q with every user-field
// placeholder replaced by the matching property of user. An "or" query
// is resolved clause by clause; an "and" query is resolved in place.
// The input query is left untouched.
func DeserializeQuery(q Query, user UserContext) (Query, error) {
	out := q.Clone()

	switch out.Type {
	case QueryOr:
		for i := range out.Clauses {
			if err := resolvePredicates(&out.Clauses[i].Predicates, user); err != nil {
				return Query{}, err
			}
		}
	default:
		if err := resolvePredicates(&out.Predicates, user); err != nil {
			return Query{}, err
		}
	}
	return out, nil
}

func resolvePredicates(p *Predicates, user UserContext) error {
	for _, c := range []*Condition{p.AssignedTo, p.CreatedBy, p.UpdatedBy} {
		if err := resolveTerm(c, user); err != nil {
			return err
		}
	}
	// Location predicates come in two shapes: exact (term) and within
	// (location). Resolve whichever operand the condition carries.
	for _, c := range []*Condition{p.CreatedAtLocation, p.UpdatedAtLocation} {
		if err := resolveTerm(c, user); err != nil {
			return err
		}
		if err := resolveLocation(c, user); err != nil {
			return err
		}
	}
	return nil
}

// resolveTerm binds an exact condition's deferred term.
func resolveTerm(c *Condition, user UserContext) error {
	if c == nil || c.Term == nil || !c.Term.IsDeferred() {
		return nil
	}
	v, err := ResolveUserField(c.Term.UserField, user)
	if err != nil {
		return err
	}
	*c.Term = Lit(v)
	return nil
}

// resolveLocation binds a within condition's deferred location.
func resolveLocation(c *Condition, user UserContext) error {
	if c == nil || c.Location == nil || !c.Location.IsDeferred() {
		return nil
	}
	v, err := ResolveUserField(c.Location.UserField, user)
	if err != nil {
		return err
	}
	*c.Location = Lit(v)
	return nil
}
