// Package handle normalizes raw contact identifiers for display.
//
// A handle is whatever the message store recorded for the other party:
// a phone number ("+15551234567"), an email address, or an
// already-resolved contact name. Format maps any of these to a stable
// display form so grouping and search operate on one vocabulary.
package handle

import (
	"fmt"
	"strings"
)

// Unknown is the sentinel for an absent or unresolvable identifier.
const Unknown = "Unknown"

// Format maps a raw contact identifier to its display form.
//
// US numbers in the 12-character +1NNNNNNNNNN shape become
// "+1 (NNN) NNN-NNNN". Emails, other international numbers, and
// contact names pass through unchanged. Total function: no input fails.
func Format(raw string) string {
	if raw == "" || raw == Unknown {
		return Unknown
	}
	if strings.Contains(raw, "@") {
		return raw
	}
	if strings.HasPrefix(raw, "+1") && len(raw) == 12 && allDigits(raw[2:]) {
		return fmt.Sprintf("+1 (%s) %s-%s", raw[2:5], raw[5:8], raw[8:])
	}
	if strings.HasPrefix(raw, "+") && allDigits(raw[1:]) {
		return raw
	}
	return raw
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
