// internal/fields/validators.go
package fields

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/civickit/civickit/internal/types"
)

/*
 * Per-type input validators.
 *
 * All validators are pure functions over untrusted user input. They never
 * return Go errors: a failed check yields a message descriptor for the UI,
 * a passed check yields nil. Parameterized validators (length, range, ID
 * numbers) close over their boundary so the registry can compose them per
 * field config; the boundary values are embedded in the message props for
 * template interpolation.
 *
 * Why function-based: one closed set of field types dispatched by a
 * switch reads better than fifteen single-method implementations with
 * minimal behavior variation.
 */

// Message identifiers emitted by validators. These are stable catalog
// keys; the UI owns the localized texts.
const (
	MsgRequiredField   = "requiredField"
	MsgInvalidDate     = "invalidDate"
	MsgInvalidEmail    = "invalidEmail"
	MsgPhoneFormat     = "phoneNumberFormat"
	MsgRange           = "range"
	MsgMinLength       = "minLength"
	MsgMaxLength       = "maxLength"
	MsgGreaterThanZero = "greaterThanZero"
	MsgNotGreaterThan  = "notGreaterThan"
	MsgValidLength     = "validLength"
	MsgInvalidOption   = "invalidOption"
	MsgFileType        = "fileUploadError"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Local numbering plan: leading zero followed by 9 or 10 digits.
	phonePattern        = regexp.MustCompile(`^0\d{9,10}$`)
	numericPattern      = regexp.MustCompile(`^\d+$`)
	alphanumericPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// RequiredField returns the required-field message for empty input,
// nil otherwise. Empty means nil, a blank string, or an empty list.
func RequiredField(value any) *types.TranslationMessage {
	if IsEmpty(value) {
		return &types.TranslationMessage{ID: MsgRequiredField}
	}
	return nil
}

// IsEmpty reports whether a form value counts as not provided.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// StrictDate validates YYYY-MM-DD with two-digit month and day plus a real
// calendar check (Feb 29 only on leap years). This is the DATE field-input
// format; the lenient 1-2 digit form accepted elsewhere lives in
// ValidDateFormat.
func StrictDate(value string) *types.TranslationMessage {
	parts := strings.Split(value, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	if !calendarValid(parts[0], parts[1], parts[2]) {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	return nil
}

// ValidDateFormat accepts YYYY-M-D with 1-2 digit month and day segments
// and validates against the real calendar. Used by cross-field date
// validators, where historic fixtures contain unpadded segments.
func ValidDateFormat(value string) bool {
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return false
	}
	if len(parts[0]) != 4 || len(parts[1]) < 1 || len(parts[1]) > 2 || len(parts[2]) < 1 || len(parts[2]) > 2 {
		return false
	}
	return calendarValid(parts[0], parts[1], parts[2])
}

// calendarValid reports whether the segments name a real calendar day.
// time.Date normalizes overflow (Feb 30 becomes Mar 1), so a round-trip
// comparison detects invalid days without a leap-year table.
func calendarValid(y, m, d string) bool {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// NormalizeDate rewrites a lenient date to zero-padded YYYY-MM-DD so that
// lexicographic comparison orders correctly. Input must already satisfy
// ValidDateFormat.
func NormalizeDate(value string) string {
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return value
	}
	if len(parts[1]) == 1 {
		parts[1] = "0" + parts[1]
	}
	if len(parts[2]) == 1 {
		parts[2] = "0" + parts[2]
	}
	return strings.Join(parts, "-")
}

// Email validates basic address shape.
func Email(value string) *types.TranslationMessage {
	if !emailPattern.MatchString(value) {
		return &types.TranslationMessage{ID: MsgInvalidEmail}
	}
	return nil
}

// Phone validates against the local numbering plan.
func Phone(value string) *types.TranslationMessage {
	if !phonePattern.MatchString(value) {
		return &types.TranslationMessage{ID: MsgPhoneFormat}
	}
	return nil
}

// MinLength rejects values shorter than min characters.
func MinLength(min int) func(string) *types.TranslationMessage {
	return func(value string) *types.TranslationMessage {
		if len([]rune(value)) < min {
			return &types.TranslationMessage{ID: MsgMinLength, Props: map[string]any{"min": min}}
		}
		return nil
	}
}

// MaxLength rejects values longer than max characters.
func MaxLength(max int) func(string) *types.TranslationMessage {
	return func(value string) *types.TranslationMessage {
		if len([]rune(value)) > max {
			return &types.TranslationMessage{ID: MsgMaxLength, Props: map[string]any{"max": max}}
		}
		return nil
	}
}

// ValidLength rejects values whose character count differs from n.
func ValidLength(n int) func(string) *types.TranslationMessage {
	return func(value string) *types.TranslationMessage {
		if len([]rune(value)) != n {
			return &types.TranslationMessage{ID: MsgValidLength, Props: map[string]any{"validLength": n}}
		}
		return nil
	}
}

// Range rejects numbers outside [min, max]. Both bounds inclusive.
func Range(min, max float64) func(float64) *types.TranslationMessage {
	return func(value float64) *types.TranslationMessage {
		if value < min || value > max {
			return &types.TranslationMessage{ID: MsgRange, Props: map[string]any{"min": min, "max": max}}
		}
		return nil
	}
}

// GreaterThanZero rejects zero and negative numbers.
func GreaterThanZero(value float64) *types.TranslationMessage {
	if value <= 0 {
		return &types.TranslationMessage{ID: MsgGreaterThanZero}
	}
	return nil
}

// NotGreaterThan rejects numbers above max. The bound itself passes.
func NotGreaterThan(max float64) func(float64) *types.TranslationMessage {
	return func(value float64) *types.TranslationMessage {
		if value > max {
			return &types.TranslationMessage{ID: MsgNotGreaterThan, Props: map[string]any{"maxValue": max}}
		}
		return nil
	}
}

// IDType discriminates identity document number formats.
type IDType string

const (
	NationalID              IDType = "NATIONAL_ID"
	BirthRegistrationNumber IDType = "BIRTH_REGISTRATION_NUMBER"
	DeathRegistrationNumber IDType = "DEATH_REGISTRATION_NUMBER"
	Passport                IDType = "PASSPORT"
	DrivingLicense          IDType = "DRIVING_LICENSE"
)

// IsValid reports whether the discriminator names a known document type.
func (t IDType) IsValid() bool {
	switch t {
	case NationalID, BirthRegistrationNumber, DeathRegistrationNumber, Passport, DrivingLicense:
		return true
	}
	return false
}

// idNumberRule captures one document type's character class and length
// constraint. Exact sets ValidLength; otherwise Min/Max bound a range.
type idNumberRule struct {
	messageID string
	numeric   bool
	min, max  int
	exact     int
}

var idNumberRules = map[IDType]idNumberRule{
	NationalID:              {messageID: "validNationalId", numeric: true, min: 10, max: 17},
	BirthRegistrationNumber: {messageID: "validBirthRegistrationNumber", exact: 18},
	DeathRegistrationNumber: {messageID: "validDeathRegistrationNumber", exact: 18},
	Passport:                {messageID: "validPassportNumber", exact: 9},
	DrivingLicense:          {messageID: "validDrivingLicenseNumber", exact: 15},
}

// ValidIDNumber validates a document number per the typeOfID rule table.
// Unknown document types pass; configuration validation rejects them
// before any input reaches this path.
func ValidIDNumber(typeOfID IDType) func(string) *types.TranslationMessage {
	rule, ok := idNumberRules[typeOfID]
	return func(value string) *types.TranslationMessage {
		if !ok {
			return nil
		}

		charClass := alphanumericPattern
		if rule.numeric {
			charClass = numericPattern
		}

		valid := charClass.MatchString(value)
		n := len([]rune(value))
		if rule.exact > 0 {
			valid = valid && n == rule.exact
		} else {
			valid = valid && n >= rule.min && n <= rule.max
		}
		if valid {
			return nil
		}

		props := map[string]any{}
		if rule.exact > 0 {
			props["validLength"] = rule.exact
		} else {
			props["min"] = rule.min
			props["max"] = rule.max
		}
		return &types.TranslationMessage{ID: rule.messageID, Props: props}
	}
}
