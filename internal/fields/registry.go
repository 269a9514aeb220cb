// internal/fields/registry.go
package fields

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/civickit/civickit/internal/conditionals"
	"github.com/civickit/civickit/internal/types"
)

/*
 * Field validator registry.
 *
 * Maps a field's declared type to its validation behavior and produces
 * structured error descriptors for the UI. Dispatch is a single
 * exhaustive switch over the closed FieldType set.
 *
 * Contract:
 *   - required + empty value  -> [requiredField], type checks do not run
 *   - non-required + empty    -> [] (pass)
 *   - otherwise the full set of applicable type checks runs and returns
 *     its complete message list; validation is never partially applied
 *   - user input NEVER raises an error; only a field config that slipped
 *     past EventConfig.Validate (unknown type) panics, as that is a
 *     defect, not input
 */

// Registry validates field input for one deployment. DefaultCountry
// drives the address validation branch.
type Registry struct {
	defaultCountry string
}

// NewRegistry creates a validator registry for the given home country code.
func NewRegistry(defaultCountry string) *Registry {
	return &Registry{defaultCountry: defaultCountry}
}

// ValidateFieldInput validates one field's current value and returns the
// complete list of message descriptors, empty when the value passes.
func (r *Registry) ValidateFieldInput(field FieldConfig, value any) []types.TranslationMessage {
	if field.Type.IsLayout() {
		return nil
	}

	if IsEmpty(value) {
		if field.Required {
			return []types.TranslationMessage{{ID: MsgRequiredField}}
		}
		return nil
	}

	switch field.Type {
	case TypeText:
		return collect(r.validateText(field, value))
	case TypeDate:
		return collect(validateStringValue(value, StrictDate))
	case TypeEmail:
		return collect(validateStringValue(value, Email))
	case TypePhone:
		return collect(validateStringValue(value, Phone))
	case TypeNumber:
		return collect(r.validateNumber(field, value)...)
	case TypeIDNumber:
		typeOfID := IDType("")
		if field.Options.ID != nil {
			typeOfID = field.Options.ID.TypeOfID
		}
		return collect(validateStringValue(value, ValidIDNumber(typeOfID)))
	case TypeSelect, TypeRadioGroup:
		return collect(r.validateOption(field, value))
	case TypeCheckbox:
		return collect(validateCheckbox(value))
	case TypeFile, TypeSignature:
		return collect(r.validateFile(field, value))
	case TypeAddress:
		m, _ := value.(map[string]any)
		if m == nil {
			return []types.TranslationMessage{{ID: MsgInvalidOption, Props: map[string]any{"field": AddrCountry}}}
		}
		return ValidateAddress(m, r.defaultCountry)
	default:
		panic(fmt.Sprintf("fields: no validator registered for type %q", field.Type))
	}
}

// ValidateForm validates the whole form: visibility is resolved first so
// hidden fields contribute neither values nor errors, then each visible
// field runs its type checks followed by any composite validation rules.
// Composite rules only run once the field-level checks pass.
func (r *Registry) ValidateForm(cfg EventConfig, form types.FormData, now string, user map[string]any) map[types.FieldID][]types.TranslationMessage {
	visible := VisibleValues(cfg.Fields, form, now, user)
	result := make(map[types.FieldID][]types.TranslationMessage)

	for _, f := range cfg.Fields {
		p := conditionals.Parameters{Form: visible, Now: now, User: user}
		if !conditionals.IsVisible(f.Conditionals, p) {
			continue
		}

		errs := r.ValidateFieldInput(f, visible[f.ID])
		if len(errs) == 0 && !IsEmpty(visible[f.ID]) {
			for _, rule := range f.Validation {
				if !conditionals.Evaluate(rule.Conditional, p) {
					errs = append(errs, rule.Message)
				}
			}
		}
		if len(errs) > 0 {
			result[f.ID] = errs
		}
	}
	return result
}

// validateText applies configured length bounds.
func (r *Registry) validateText(field FieldConfig, value any) *types.TranslationMessage {
	s, ok := value.(string)
	if !ok {
		return &types.TranslationMessage{ID: MsgInvalidOption}
	}
	if opts := field.Options.Text; opts != nil {
		if opts.MinLength != nil {
			if m := MinLength(*opts.MinLength)(s); m != nil {
				return m
			}
		}
		if opts.MaxLength != nil {
			if m := MaxLength(*opts.MaxLength)(s); m != nil {
				return m
			}
		}
	}
	return nil
}

// validateNumber accepts native numbers and numeric strings, then applies
// configured range bounds. Numeric strings appear when values round-trip
// through text inputs.
func (r *Registry) validateNumber(field FieldConfig, value any) []*types.TranslationMessage {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return []*types.TranslationMessage{{ID: MsgRange}}
		}
		n = parsed
	default:
		return []*types.TranslationMessage{{ID: MsgRange}}
	}

	if opts := field.Options.Number; opts != nil {
		if opts.Min != nil && opts.Max != nil {
			return []*types.TranslationMessage{Range(*opts.Min, *opts.Max)(n)}
		}
		if opts.Max != nil {
			return []*types.TranslationMessage{NotGreaterThan(*opts.Max)(n)}
		}
		if opts.Min != nil && *opts.Min == 0 {
			return []*types.TranslationMessage{GreaterThanZero(n)}
		}
	}
	return nil
}

// validateOption checks membership in the configured value set.
func (r *Registry) validateOption(field FieldConfig, value any) *types.TranslationMessage {
	s, ok := value.(string)
	if !ok {
		return &types.TranslationMessage{ID: MsgInvalidOption}
	}
	opts := field.Options.Select
	if opts == nil || len(opts.Values) == 0 {
		return nil
	}
	for _, v := range opts.Values {
		if v == s {
			return nil
		}
	}
	return &types.TranslationMessage{ID: MsgInvalidOption, Props: map[string]any{"value": s}}
}

// validateCheckbox only admits booleans.
func validateCheckbox(value any) *types.TranslationMessage {
	if _, ok := value.(bool); !ok {
		return &types.TranslationMessage{ID: MsgInvalidOption}
	}
	return nil
}

// validateFile checks the uploaded filename against accepted extensions.
func (r *Registry) validateFile(field FieldConfig, value any) *types.TranslationMessage {
	s, ok := value.(string)
	if !ok {
		return &types.TranslationMessage{ID: MsgFileType}
	}
	opts := field.Options.File
	if opts == nil || len(opts.AcceptedTypes) == 0 {
		return nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(s)), ".")
	for _, accepted := range opts.AcceptedTypes {
		if strings.ToLower(accepted) == ext {
			return nil
		}
	}
	return &types.TranslationMessage{ID: MsgFileType, Props: map[string]any{"acceptedTypes": opts.AcceptedTypes}}
}

// validateStringValue adapts a string validator to an any-typed value.
// Non-string input for a string-typed field reports the validator's
// failure rather than panicking; the UI can submit anything.
func validateStringValue(value any, check func(string) *types.TranslationMessage) *types.TranslationMessage {
	s, ok := value.(string)
	if !ok {
		return check("")
	}
	return check(s)
}

// collect drops nil messages and flattens the rest into the return shape.
func collect(msgs ...*types.TranslationMessage) []types.TranslationMessage {
	var out []types.TranslationMessage
	for _, m := range msgs {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
