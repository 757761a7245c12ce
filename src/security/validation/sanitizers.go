package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 8

// SanitizeText removes all HTML from user-entered text. bluemonday escapes
// the text it keeps, so entities are decoded back; the remote API stores raw
// text and the dashboard escapes on render. Decoding can surface markup that
// was entity-encoded, so passes repeat until the text is stable. Input that
// never settles is returned still escaped.
func SanitizeText(s string) string {
	for range maxSanitizePasses {
		decoded := html.UnescapeString(strictHTMLPolicy.Sanitize(s))
		if decoded == s {
			return decoded
		}
		s = decoded
	}
	return strictHTMLPolicy.Sanitize(s)
}

// SanitizeForFormulaInjection prepends a single quote if the cell would start
// with a spreadsheet formula trigger.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// StripUnprintable removes non-printable characters, keeping tab, newline and
// carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
