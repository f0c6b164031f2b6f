// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
)

// Ellipsis separates the head and tail kept by TruncateMiddle.
const Ellipsis = " ... "

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// TruncateMiddle shortens s to its first and last max/2 characters joined by
// Ellipsis. Strings of at most max characters are returned unchanged.
// Lengths are counted in runes.
func TruncateMiddle(s string, max int) string {
	r := []rune(s)
	if max < 0 {
		max = 0
	}
	if len(r) <= max {
		return s
	}
	half := max / 2
	return string(r[:half]) + Ellipsis + string(r[len(r)-half:])
}
