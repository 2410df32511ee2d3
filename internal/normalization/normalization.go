package normalization

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ParseInputString trims surrounding whitespace and collapses interior
// runs of whitespace to single spaces.
func ParseInputString(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// ParseEmail lowercases and trims an email address. The empty string is
// returned when the result does not look like an address at all.
func ParseEmail(s string) string {
	email := strings.ToLower(strings.TrimSpace(s))
	if !emailPattern.MatchString(email) {
		return ""
	}
	return email
}

// ParseCountryCode uppercases a two-letter ISO country code, returning
// the empty string for anything that is not two ASCII letters.
func ParseCountryCode(s string) string {
	cc := strings.ToUpper(strings.TrimSpace(s))
	if len(cc) != 2 {
		return ""
	}
	for _, r := range cc {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return cc
}
