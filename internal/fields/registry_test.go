// internal/fields/registry_test.go
package fields

import (
	"errors"
	"testing"

	"github.com/civickit/civickit/internal/conditionals"
	"github.com/civickit/civickit/internal/types"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidateFieldInput_RequiredShortCircuit(t *testing.T) {
	reg := NewRegistry(homeCountry)
	field := FieldConfig{ID: "dob", Type: TypeDate, Required: true}

	errs := reg.ValidateFieldInput(field, "")
	if len(errs) != 1 || errs[0].ID != MsgRequiredField {
		t.Fatalf("empty required DATE = %v, want exactly [requiredField]", errs)
	}

	// Type checks must not also run on empty input.
	errs = reg.ValidateFieldInput(field, nil)
	if len(errs) != 1 || errs[0].ID != MsgRequiredField {
		t.Errorf("nil required DATE = %v, want exactly [requiredField]", errs)
	}
}

func TestValidateFieldInput_OptionalEmptyPasses(t *testing.T) {
	reg := NewRegistry(homeCountry)
	field := FieldConfig{ID: "email", Type: TypeEmail}

	if errs := reg.ValidateFieldInput(field, ""); len(errs) != 0 {
		t.Errorf("optional empty EMAIL = %v, want []", errs)
	}
}

func TestValidateFieldInput_Date(t *testing.T) {
	reg := NewRegistry(homeCountry)
	field := FieldConfig{ID: "dob", Type: TypeDate, Required: true}

	tests := []struct {
		value  string
		wantID string
	}{
		{"2021-01-01", ""},
		{"22-02-02", MsgInvalidDate},
		{"2000-2-2", MsgInvalidDate}, // field input path requires padded segments
		{"2021-02-29", MsgInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			errs := reg.ValidateFieldInput(field, tt.value)
			if tt.wantID == "" {
				if len(errs) != 0 {
					t.Errorf("ValidateFieldInput(%q) = %v, want []", tt.value, errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].ID != tt.wantID {
				t.Errorf("ValidateFieldInput(%q) = %v, want [%s]", tt.value, errs, tt.wantID)
			}
		})
	}
}

func TestValidateFieldInput_Dispatch(t *testing.T) {
	reg := NewRegistry(homeCountry)

	tests := []struct {
		name   string
		field  FieldConfig
		value  any
		wantID string
	}{
		{
			name:  "text within bounds",
			field: FieldConfig{ID: "name", Type: TypeText, Options: Options{Text: &TextOptions{MinLength: intPtr(2), MaxLength: intPtr(10)}}},
			value: "Amina",
		},
		{
			name:   "text below min",
			field:  FieldConfig{ID: "name", Type: TypeText, Options: Options{Text: &TextOptions{MinLength: intPtr(2)}}},
			value:  "A",
			wantID: MsgMinLength,
		},
		{
			name:  "number in range",
			field: FieldConfig{ID: "weight", Type: TypeNumber, Options: Options{Number: &NumberOptions{Min: floatPtr(0.5), Max: floatPtr(10)}}},
			value: float64(3.2),
		},
		{
			name:   "number out of range",
			field:  FieldConfig{ID: "weight", Type: TypeNumber, Options: Options{Number: &NumberOptions{Min: floatPtr(0.5), Max: floatPtr(10)}}},
			value:  float64(11),
			wantID: MsgRange,
		},
		{
			name:  "numeric string accepted",
			field: FieldConfig{ID: "weight", Type: TypeNumber, Options: Options{Number: &NumberOptions{Min: floatPtr(0), Max: floatPtr(10)}}},
			value: "4.5",
		},
		{
			name:   "select outside options",
			field:  FieldConfig{ID: "informant", Type: TypeSelect, Options: Options{Select: &SelectOptions{Values: []string{"MOTHER", "FATHER"}}}},
			value:  "UNCLE",
			wantID: MsgInvalidOption,
		},
		{
			name:  "select member",
			field: FieldConfig{ID: "informant", Type: TypeRadioGroup, Options: Options{Select: &SelectOptions{Values: []string{"MOTHER", "FATHER"}}}},
			value: "FATHER",
		},
		{
			name:   "checkbox non-bool",
			field:  FieldConfig{ID: "confirmed", Type: TypeCheckbox},
			value:  "yes",
			wantID: MsgInvalidOption,
		},
		{
			name:  "checkbox bool",
			field: FieldConfig{ID: "confirmed", Type: TypeCheckbox},
			value: true,
		},
		{
			name:   "file with rejected extension",
			field:  FieldConfig{ID: "proof", Type: TypeFile, Options: Options{File: &FileOptions{AcceptedTypes: []string{"pdf", "png"}}}},
			value:  "scan.exe",
			wantID: MsgFileType,
		},
		{
			name:  "file with accepted extension",
			field: FieldConfig{ID: "proof", Type: TypeFile, Options: Options{File: &FileOptions{AcceptedTypes: []string{"pdf", "png"}}}},
			value: "scan.PDF",
		},
		{
			name:   "id number dispatches on typeOfId",
			field:  FieldConfig{ID: "nid", Type: TypeIDNumber, Options: Options{ID: &IDOptions{TypeOfID: NationalID}}},
			value:  "2019BrTVz8945",
			wantID: "validNationalId",
		},
		{
			name:  "layout types never validate",
			field: FieldConfig{ID: "sep", Type: TypeDivider, Required: true},
			value: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := reg.ValidateFieldInput(tt.field, tt.value)
			if tt.wantID == "" {
				if len(errs) != 0 {
					t.Errorf("errs = %v, want []", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("errs = [], want [%s]", tt.wantID)
			}
			if errs[0].ID != tt.wantID {
				t.Errorf("errs[0].ID = %q, want %q", errs[0].ID, tt.wantID)
			}
		})
	}
}

func TestValidateFieldInput_UnknownTypePanics(t *testing.T) {
	reg := NewRegistry(homeCountry)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for unregistered field type")
		}
	}()
	reg.ValidateFieldInput(FieldConfig{ID: "x", Type: FieldType("HOLOGRAM")}, "v")
}

func TestEventConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EventConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: EventConfig{EventType: "birth", Fields: []FieldConfig{
				{ID: "child.name", Type: TypeText},
				{ID: "child.dob", Type: TypeDate},
			}},
		},
		{
			name: "duplicate field id",
			cfg: EventConfig{EventType: "birth", Fields: []FieldConfig{
				{ID: "dob", Type: TypeDate},
				{ID: "dob", Type: TypeText},
			}},
			wantErr: true,
		},
		{
			name: "unknown type",
			cfg: EventConfig{EventType: "birth", Fields: []FieldConfig{
				{ID: "x", Type: FieldType("HOLOGRAM")},
			}},
			wantErr: true,
		},
		{
			name: "id number without typeOfId",
			cfg: EventConfig{EventType: "birth", Fields: []FieldConfig{
				{ID: "nid", Type: TypeIDNumber},
			}},
			wantErr: true,
		},
		{
			name:    "missing event type",
			cfg:     EventConfig{Fields: []FieldConfig{{ID: "x", Type: TypeText}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventConfig_Validate_DepthLimit(t *testing.T) {
	deep := conditionals.Field("x").IsEqualTo("y")
	for i := 0; i < types.MaxExpressionDepth; i++ {
		deep = conditionals.Not(deep)
	}

	cfg := EventConfig{EventType: "birth", Fields: []FieldConfig{
		{ID: "x", Type: TypeText},
		{
			ID: "y", Type: TypeText,
			Conditionals: []conditionals.Rule{{Type: conditionals.RuleShow, Conditional: deep}},
		},
	}}
	if err := cfg.Validate(); !errors.Is(err, types.ErrExpressionTooDeep) {
		t.Errorf("Validate() with deep conditional error = %v, want ErrExpressionTooDeep", err)
	}

	cfg.Fields[1].Conditionals = nil
	cfg.Fields[1].Validation = []ValidationRule{{Conditional: deep}}
	if err := cfg.Validate(); !errors.Is(err, types.ErrExpressionTooDeep) {
		t.Errorf("Validate() with deep validation rule error = %v, want ErrExpressionTooDeep", err)
	}
}

func TestVisibleValues_HiddenExcludedButPreserved(t *testing.T) {
	fieldsList := []FieldConfig{
		{ID: "maritalStatus", Type: TypeSelect},
		{
			ID: "spouseName", Type: TypeText,
			Conditionals: []conditionals.Rule{{
				Type:        conditionals.RuleShow,
				Conditional: conditionals.Field("maritalStatus").IsEqualTo("MARRIED"),
			}},
		},
		{
			ID: "widowedSince", Type: TypeDate,
			Conditionals: []conditionals.Rule{{
				Type:        conditionals.RuleShow,
				Conditional: conditionals.Field("maritalStatus").IsEqualTo("WIDOWED"),
			}},
		},
	}

	form := types.FormData{
		"maritalStatus": "MARRIED",
		"spouseName":    "Naledi",
		"widowedSince":  "2019-01-01", // stale value from a prior toggle, still stored
	}

	visible := VisibleValues(fieldsList, form, testNow, nil)

	if visible["spouseName"] != "Naledi" {
		t.Errorf("visible[spouseName] = %v, want Naledi", visible["spouseName"])
	}
	if visible.Has("widowedSince") {
		t.Errorf("hidden field value leaked into visible set")
	}
	// Storage is untouched: reappearing fields restore prior input.
	if form["widowedSince"] != "2019-01-01" {
		t.Errorf("stored hidden value was discarded")
	}
}

func TestValidateForm(t *testing.T) {
	reg := NewRegistry(homeCountry)
	cfg := EventConfig{
		EventType: "death",
		Fields: []FieldConfig{
			{ID: "deceased.name", Type: TypeText, Required: true},
			{ID: "deathDate", Type: TypeDate, Required: true},
			{
				ID: "placeOfBurial", Type: TypeText,
				Conditionals: []conditionals.Rule{{
					Type:        conditionals.RuleShow,
					Conditional: conditionals.Not(conditionals.Field("deathDate").IsUndefined()),
				}},
			},
		},
	}

	t.Run("clean form", func(t *testing.T) {
		form := types.FormData{"deceased.name": "K. Phiri", "deathDate": "2024-01-15"}
		errs := reg.ValidateForm(cfg, form, testNow, nil)
		if len(errs) != 0 {
			t.Errorf("ValidateForm() = %v, want no errors", errs)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		errs := reg.ValidateForm(cfg, types.FormData{}, testNow, nil)
		if len(errs[types.FieldID("deceased.name")]) != 1 {
			t.Errorf("want requiredField on deceased.name, got %v", errs)
		}
		if len(errs[types.FieldID("deathDate")]) != 1 {
			t.Errorf("want requiredField on deathDate, got %v", errs)
		}
	})

	t.Run("hidden field not validated", func(t *testing.T) {
		// placeOfBurial shows only once deathDate has a value; an invalid
		// stored value under the hidden field must not produce errors.
		form := types.FormData{"deceased.name": "K. Phiri", "placeOfBurial": ""}
		errs := reg.ValidateForm(cfg, form, testNow, nil)
		if _, ok := errs[types.FieldID("placeOfBurial")]; ok {
			t.Errorf("hidden field produced validation errors: %v", errs)
		}
	})
}

func TestValidateForm_CompositeRules(t *testing.T) {
	reg := NewRegistry(homeCountry)
	cfg := EventConfig{
		EventType: "marriage",
		Fields: []FieldConfig{
			{ID: "dob", Type: TypeDate},
			{
				ID: "dom", Type: TypeDate,
				Validation: []ValidationRule{{
					Conditional: conditionals.Field("dom").IsAfter().Date("1900-01-01"),
					Message:     types.TranslationMessage{ID: "domLaterThanDob"},
				}},
			},
		},
	}

	t.Run("composite failure reported", func(t *testing.T) {
		form := types.FormData{"dom": "1850-01-01"}
		errs := reg.ValidateForm(cfg, form, testNow, nil)
		got := errs[types.FieldID("dom")]
		if len(got) != 1 || got[0].ID != "domLaterThanDob" {
			t.Errorf("errs[dom] = %v, want [domLaterThanDob]", got)
		}
	})

	t.Run("composite skipped when field check fails", func(t *testing.T) {
		form := types.FormData{"dom": "junk"}
		errs := reg.ValidateForm(cfg, form, testNow, nil)
		got := errs[types.FieldID("dom")]
		if len(got) != 1 || got[0].ID != MsgInvalidDate {
			t.Errorf("errs[dom] = %v, want [invalidDate] only", got)
		}
	})
}
