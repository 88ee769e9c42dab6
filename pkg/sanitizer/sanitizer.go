// Package sanitizer normalizes client-supplied strings before validation.
// It never rejects input; it only trims and canonicalizes so that the
// validators and uniqueness checks see consistent values.
package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeName collapses whitespace in a person's name.
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail trims and lowercases an e-mail address. No inner-whitespace
// collapsing: a space inside an address is a validation error, not noise.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeKind canonicalizes a session kind value.
func NormalizeKind(kind string) string {
	return strings.ToLower(TrimAndNormalize(kind))
}
