// Package ai provides helpers for turning raw model text into parseable payloads.
package ai

import (
	"regexp"
	"strings"
)

// StripCodeFence removes a single surrounding markdown code fence
// (```json ... ``` or ``` ... ```) and trims whitespace. Any other text is
// returned trimmed but otherwise untouched so that strict JSON parsing still
// rejects prose.
func StripCodeFence(response string) string {
	s := strings.TrimSpace(response)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop an info string such as "json" on the opening fence line
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if info := strings.TrimSpace(s[:nl]); info == "" || isFenceInfo(info) {
			s = s[nl+1:]
		}
	}
	return strings.TrimSpace(s)
}

func isFenceInfo(s string) bool {
	return !strings.ContainsAny(s, "{}[]\" ")
}

// listMarker matches leading "1)", "1.", "1 -", "2 )" style enumerators.
var listMarker = regexp.MustCompile(`^\d+[).\s-]*`)

// ParseNumberedList splits free text into entries, one per non-empty line,
// with leading enumeration markers removed.
func ParseNumberedList(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		ln = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(ln), ""))
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
