// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"strings"
	"unicode"
)

// MaxLength is the longest slug Make will return.
const MaxLength = 50

// Make lower-cases title, drops every character outside [a-z0-9] and
// Unicode whitespace, joins the remaining words with single hyphens and
// truncates the result to MaxLength. The result never starts or ends with a hyphen.
func Make(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	s := strings.Join(strings.Fields(b.String()), "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}
