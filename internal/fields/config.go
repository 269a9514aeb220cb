// internal/fields/config.go
package fields

import (
	"fmt"

	"github.com/civickit/civickit/internal/conditionals"
	"github.com/civickit/civickit/internal/types"
)

/*
 * Declarative field configuration.
 *
 * An event form is data: an ordered list of FieldConfig values loaded from
 * country configuration at startup. The field type discriminates which
 * validator and which UI control apply; type-specific options live in a
 * per-type sub-struct so a TEXT field cannot carry numeric bounds.
 *
 * Invariants enforced by EventConfig.Validate:
 *   - field IDs are unique within the event
 *   - every declared type has a registered validator
 *   - field count stays under types.MaxFieldsPerEvent
 *   - expression trees stay within types.MaxExpressionDepth
 *
 * Conditional rules may only reference fields declared BEFORE their own
 * field; the single-pass visible-value derivation depends on it.
 */

// FieldType discriminates the validator and UI control for a field.
type FieldType string

const (
	TypeText       FieldType = "TEXT"
	TypeDate       FieldType = "DATE"
	TypeEmail      FieldType = "EMAIL"
	TypeNumber     FieldType = "NUMBER"
	TypePhone      FieldType = "PHONE"
	TypeIDNumber   FieldType = "ID_NUMBER"
	TypeSelect     FieldType = "SELECT"
	TypeRadioGroup FieldType = "RADIO_GROUP"
	TypeCheckbox   FieldType = "CHECKBOX"
	TypeFile       FieldType = "FILE"
	TypeAddress    FieldType = "ADDRESS"
	TypeSignature  FieldType = "SIGNATURE"
	TypeDivider    FieldType = "DIVIDER"
	TypePageHeader FieldType = "PAGE_HEADER"
	TypeParagraph  FieldType = "PARAGRAPH"
)

// knownTypes is the closed set of dispatchable field types.
var knownTypes = map[FieldType]bool{
	TypeText: true, TypeDate: true, TypeEmail: true, TypeNumber: true,
	TypePhone: true, TypeIDNumber: true, TypeSelect: true,
	TypeRadioGroup: true, TypeCheckbox: true, TypeFile: true,
	TypeAddress: true, TypeSignature: true, TypeDivider: true,
	TypePageHeader: true, TypeParagraph: true,
}

// IsLayout reports whether the type renders static content and never
// carries a value (no validation applies, required is ignored).
func (t FieldType) IsLayout() bool {
	return t == TypeDivider || t == TypePageHeader || t == TypeParagraph
}

// TextOptions constrains TEXT field input length.
type TextOptions struct {
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`
}

// NumberOptions constrains NUMBER field input range.
type NumberOptions struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// SelectOptions lists admissible values for SELECT and RADIO_GROUP fields.
type SelectOptions struct {
	Values []string `json:"values"`
}

// FileOptions constrains FILE field uploads.
type FileOptions struct {
	AcceptedTypes []string `json:"acceptedTypes,omitempty"`
	MaxSizeMB     int      `json:"maxSizeMb,omitempty"`
}

// IDOptions selects which identity document an ID_NUMBER field captures.
type IDOptions struct {
	TypeOfID IDType `json:"typeOfId"`
}

// Options carries type-specific configuration. Only the member matching
// the field's type is consulted; the rest stay nil.
type Options struct {
	Text   *TextOptions   `json:"text,omitempty"`
	Number *NumberOptions `json:"number,omitempty"`
	Select *SelectOptions `json:"select,omitempty"`
	File   *FileOptions   `json:"file,omitempty"`
	ID     *IDOptions     `json:"id,omitempty"`
}

// ValidationRule is an extra composite check attached to a field.
// The value passes while the conditional evaluates true against the
// current (visible) form state; otherwise Message is reported.
type ValidationRule struct {
	Conditional conditionals.Expr        `json:"conditional"`
	Message     types.TranslationMessage `json:"message"`
}

// FieldConfig describes one input of an event form.
type FieldConfig struct {
	ID           types.FieldID            `json:"id"`
	Type         FieldType                `json:"type"`
	Required     bool                     `json:"required,omitempty"`
	Label        types.TranslationMessage `json:"label,omitempty"`
	Conditionals []conditionals.Rule      `json:"conditionals,omitempty"`
	Options      Options                  `json:"configuration,omitempty"`
	Validation   []ValidationRule         `json:"validation,omitempty"`
}

// EventConfig is the complete form definition for one event type.
type EventConfig struct {
	EventType types.EventType `json:"eventType"`
	Fields    []FieldConfig   `json:"fields"`
}

// Validate checks the static invariants of a loaded configuration.
// Runs at the trust boundary so that the validator dispatch can treat an
// unknown type as a programming error afterwards.
func (c *EventConfig) Validate() error {
	if c.EventType == "" {
		return fmt.Errorf("event config missing eventType")
	}
	if len(c.Fields) > types.MaxFieldsPerEvent {
		return types.ErrTooManyFields
	}

	seen := make(map[types.FieldID]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.ID == "" {
			return fmt.Errorf("event %q: field with empty id", c.EventType)
		}
		if seen[f.ID] {
			return fmt.Errorf("event %q field %q: %w", c.EventType, f.ID, types.ErrDuplicateFieldID)
		}
		seen[f.ID] = true

		if !knownTypes[f.Type] {
			return fmt.Errorf("event %q field %q type %q: %w", c.EventType, f.ID, f.Type, types.ErrUnknownFieldType)
		}
		if f.Type == TypeIDNumber && (f.Options.ID == nil || !f.Options.ID.TypeOfID.IsValid()) {
			return fmt.Errorf("event %q field %q: ID_NUMBER requires a valid typeOfId", c.EventType, f.ID)
		}

		// The JSON codec enforces the depth limit at decode time; this
		// covers trees built in code through the builders.
		for _, r := range f.Conditionals {
			if r.Conditional.Depth() > types.MaxExpressionDepth {
				return fmt.Errorf("event %q field %q conditional: %w", c.EventType, f.ID, types.ErrExpressionTooDeep)
			}
		}
		for _, v := range f.Validation {
			if v.Conditional.Depth() > types.MaxExpressionDepth {
				return fmt.Errorf("event %q field %q validation rule: %w", c.EventType, f.ID, types.ErrExpressionTooDeep)
			}
		}
	}
	return nil
}

// VisibleValues derives the evaluation context of currently visible
// fields. Hidden field values remain in form storage but are excluded
// here, so conditionals referencing other fields never observe hidden
// input. Fields are processed in declaration order; each field's rules
// see only previously accepted values.
func VisibleValues(fields []FieldConfig, form types.FormData, now string, user map[string]any) types.FormData {
	visible := make(types.FormData, len(form))
	for _, f := range fields {
		p := conditionals.Parameters{Form: visible, Now: now, User: user}
		if !conditionals.IsVisible(f.Conditionals, p) {
			continue
		}
		if v, ok := form[f.ID]; ok {
			visible[f.ID] = v
		}
	}
	return visible
}
