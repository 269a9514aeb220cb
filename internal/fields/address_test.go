// internal/fields/address_test.go
package fields

import "testing"

const homeCountry = "FAR"

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name  string
		value map[string]any
		valid bool
	}{
		{
			name:  "country alone is incomplete",
			value: map[string]any{"country": "FAR"},
			valid: false,
		},
		{
			name: "complete domestic address",
			value: map[string]any{
				"country": "FAR", "province": "Central", "district": "Ibombo",
				"urbanOrRural": "URBAN",
			},
			valid: true,
		},
		{
			name: "domestic rural address",
			value: map[string]any{
				"country": "FAR", "province": "Central", "district": "Ibombo",
				"urbanOrRural": "RURAL",
			},
			valid: true,
		},
		{
			name: "domestic with bad discriminator",
			value: map[string]any{
				"country": "FAR", "province": "Central", "district": "Ibombo",
				"urbanOrRural": "SUBURBAN",
			},
			valid: false,
		},
		{
			name: "foreign country cannot use domestic shape",
			value: map[string]any{
				"country": "ABC", "province": "Central", "district": "Ibombo",
				"urbanOrRural": "URBAN",
			},
			valid: false,
		},
		{
			name:  "foreign open shape",
			value: map[string]any{"country": "ABC", "state": "Bavaria", "district2": "anything"},
			valid: true,
		},
		{
			name:  "missing country",
			value: map[string]any{"province": "Central"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateAddress(tt.value, homeCountry)
			if tt.valid && len(errs) != 0 {
				t.Errorf("ValidateAddress() = %v, want no errors", errs)
			}
			if !tt.valid && len(errs) == 0 {
				t.Errorf("ValidateAddress() = no errors, want at least one")
			}
		})
	}
}

func TestValidateAddress_ErrorShape(t *testing.T) {
	errs := ValidateAddress(map[string]any{"country": "FAR"}, homeCountry)
	if len(errs) != 3 {
		t.Fatalf("len(errs) = %d, want 3 (province, district, urbanOrRural)", len(errs))
	}
	wantFields := map[string]bool{"province": false, "district": false, "urbanOrRural": false}
	for _, e := range errs {
		if e.ID != MsgRequiredField {
			t.Errorf("ID = %q, want %q", e.ID, MsgRequiredField)
		}
		f, _ := e.Props["field"].(string)
		if _, ok := wantFields[f]; !ok {
			t.Errorf("unexpected field %q", f)
		}
		wantFields[f] = true
	}
	for f, seen := range wantFields {
		if !seen {
			t.Errorf("missing required error for %q", f)
		}
	}
}
