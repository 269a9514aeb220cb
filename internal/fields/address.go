// internal/fields/address.go
package fields

import "github.com/civickit/civickit/internal/types"

/*
 * Address validation.
 *
 * ADDRESS fields validate differently depending on the VALUE of their
 * country part, not on static schema: a domestic address (country equals
 * the configured default country) must name province, district, and an
 * urban-or-rural discriminator drawn from the configured location
 * hierarchy; an international address instead uses an open state/district
 * free-text shape. The branch happens at validation time per submitted
 * value.
 */

// Address part keys inside an ADDRESS field's value map.
const (
	AddrCountry      = "country"
	AddrProvince     = "province"
	AddrDistrict     = "district"
	AddrUrbanOrRural = "urbanOrRural"
	AddrState        = "state"
)

// Urban-or-rural discriminator values.
const (
	Urban = "URBAN"
	Rural = "RURAL"
)

// ValidateAddress checks an ADDRESS value map against the rules above.
// defaultCountry is the configured home country code; it is passed in
// explicitly rather than read from ambient configuration.
func ValidateAddress(value map[string]any, defaultCountry string) []types.TranslationMessage {
	var errs []types.TranslationMessage

	country, _ := value[AddrCountry].(string)
	if country == "" {
		return append(errs, types.TranslationMessage{
			ID:    MsgRequiredField,
			Props: map[string]any{"field": AddrCountry},
		})
	}

	if country == defaultCountry {
		for _, part := range []string{AddrProvince, AddrDistrict} {
			if s, _ := value[part].(string); s == "" {
				errs = append(errs, types.TranslationMessage{
					ID:    MsgRequiredField,
					Props: map[string]any{"field": part},
				})
			}
		}
		switch value[AddrUrbanOrRural] {
		case Urban, Rural:
		case nil, "":
			errs = append(errs, types.TranslationMessage{
				ID:    MsgRequiredField,
				Props: map[string]any{"field": AddrUrbanOrRural},
			})
		default:
			errs = append(errs, types.TranslationMessage{
				ID:    MsgInvalidOption,
				Props: map[string]any{"field": AddrUrbanOrRural},
			})
		}
		return errs
	}

	// International shape: state is required, all further district-style
	// parts are accepted as free text.
	if s, _ := value[AddrState].(string); s == "" {
		errs = append(errs, types.TranslationMessage{
			ID:    MsgRequiredField,
			Props: map[string]any{"field": AddrState},
		})
	}
	return errs
}
