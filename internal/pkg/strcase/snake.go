// Package strcase converts identifiers between naming conventions.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts s to lower snake_case. Word boundaries are case
// changes (userID, HTTPServer), digits followed by upper case letters, and
// any run of spaces, dashes, dots or underscores.
func ToLowerSnake(s string) string {
	runes := []rune(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(runes) + 4)

	pendingSep := false
	for i, r := range runes {
		if isSeparator(r) {
			pendingSep = b.Len() > 0
			continue
		}

		if pendingSep || (i > 0 && b.Len() > 0 && isBoundary(runes, i)) {
			b.WriteByte('_')
		}
		pendingSep = false

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '_' || r == '.'
}

func isBoundary(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	// end of an acronym: "HTTPServer" splits before "Server"
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
