// Package sanitizer cleans untrusted text before it is embedded in prompts,
// synthesized markup, or stored records.
package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// EscapeHTML escapes HTML special characters so untrusted text can be placed
// inside markup verbatim.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// RemoveNullBytes strips NUL bytes from the string.
func RemoveNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// RemoveControlSequences strips ANSI escape sequences and control characters,
// keeping newlines, carriage returns and tabs.
func RemoveControlSequences(s string) string {
	s = ansiEscape.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// LimitLength truncates s to at most max runes. Truncation is rune-safe so
// multi-byte characters are never split.
func LimitLength(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// SanitizeUserInput normalizes free-form user text: NUL bytes and control
// sequences removed, surrounding whitespace trimmed, length capped.
func SanitizeUserInput(s string) string {
	s = RemoveNullBytes(s)
	s = RemoveControlSequences(s)
	s = strings.TrimSpace(s)
	return LimitLength(s, 10000)
}

// SanitizeEmail strips characters that have no place in an address while
// leaving the format validation to the caller.
func SanitizeEmail(email string) string {
	s := RemoveControlSequences(RemoveNullBytes(email))
	for _, c := range []string{"<", ">", `"`, "'"} {
		s = strings.ReplaceAll(s, c, "")
	}
	return strings.TrimSpace(s)
}
