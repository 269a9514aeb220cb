// internal/fields/dates.go
package fields

import "github.com/civickit/civickit/internal/types"

/*
 * Cross-field date validators.
 *
 * These compose the base date-format check with a relational check against
 * a second date drawn from wider form/draft state. Format failure always
 * short-circuits before the relational check runs; a relational failure
 * reports a distinct message kind from a plain format failure so the UI
 * can explain which rule was broken.
 *
 * Current date and related dates are passed in explicitly. Nothing here
 * reads clocks or ambient state; callers normalize "now" once per request.
 */

// Draft state keys consulted by the relational checks below.
const (
	DraftBirthDate = types.FieldID("birthDate")
	DraftDeathDate = types.FieldID("deathDate")
)

// IsDateAfter reports whether first falls strictly after second.
// Both must be lenient-format calendar dates; anything else is false.
func IsDateAfter(first, second string) bool {
	if !ValidDateFormat(first) || !ValidDateFormat(second) {
		return false
	}
	return NormalizeDate(first) > NormalizeDate(second)
}

// CheckBirthDate validates a date of birth against an already captured
// marriage date: the birth must fall strictly before the marriage.
func CheckBirthDate(marriageDate string) func(string) *types.TranslationMessage {
	return func(value string) *types.TranslationMessage {
		if !ValidDateFormat(value) {
			return &types.TranslationMessage{ID: MsgInvalidDate}
		}
		if marriageDate == "" {
			return nil
		}
		if !IsDateAfter(marriageDate, value) {
			return &types.TranslationMessage{ID: "dobEarlierThanDom"}
		}
		return nil
	}
}

// CheckMarriageDate validates a date of marriage against an already
// captured birth date: the marriage must fall strictly after the birth.
func CheckMarriageDate(birthDate string) func(string) *types.TranslationMessage {
	return func(value string) *types.TranslationMessage {
		if !ValidDateFormat(value) {
			return &types.TranslationMessage{ID: MsgInvalidDate}
		}
		if birthDate == "" {
			return nil
		}
		if !IsDateAfter(value, birthDate) {
			return &types.TranslationMessage{ID: "domLaterThanDob"}
		}
		return nil
	}
}

// IsValidBirthDate validates a birth date against the current date and,
// when the draft also records a death date, against that bound: a person
// cannot be born after the current date nor after they died.
func IsValidBirthDate(value, now string, drafts types.FormData) *types.TranslationMessage {
	if !ValidDateFormat(value) {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	if IsDateAfter(value, now) {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	if death, ok := drafts[DraftDeathDate].(string); ok && ValidDateFormat(death) {
		if IsDateAfter(value, death) {
			return &types.TranslationMessage{ID: "isDateNotAfterDeath"}
		}
	}
	return nil
}

// IsValidDeathOccurrenceDate validates a death date against the current
// date and, when the draft records the deceased's birth date, against
// that bound: death cannot precede birth or fall in the future.
func IsValidDeathOccurrenceDate(value, now string, drafts types.FormData) *types.TranslationMessage {
	if !ValidDateFormat(value) {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	if IsDateAfter(value, now) {
		return &types.TranslationMessage{ID: MsgInvalidDate}
	}
	if birth, ok := drafts[DraftBirthDate].(string); ok && ValidDateFormat(birth) {
		if IsDateAfter(birth, value) {
			return &types.TranslationMessage{ID: "isDateNotBeforeBirth"}
		}
	}
	return nil
}
