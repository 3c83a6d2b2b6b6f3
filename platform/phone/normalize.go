// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "US"

// Canonical normalizes a phone number to the canonical 11-digit form:
// country code followed by the 10-digit national number, no separators.
// A bare 10-digit number is treated as a national number in the default
// region. If the input cannot be parsed as a valid number, separators are
// stripped and the country code prefixed mechanically so lookups still
// compare like with like.
func Canonical(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err == nil && phonenumbers.IsValidNumber(number) {
		e164 := phonenumbers.Format(number, phonenumbers.E164)
		return strings.TrimPrefix(e164, "+")
	}

	digits := stripNonDigits(trimmed)
	if len(digits) == 10 {
		return "1" + digits
	}
	return digits
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it
// returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

func stripNonDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
