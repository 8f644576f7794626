package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON pulls the JSON payload out of a model reply. A ```json fenced
// block wins; otherwise the trimmed reply is used if it starts like a JSON
// object or array. ok is false when neither applies.
func ExtractJSON(text string) (string, bool) {
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		payload := strings.TrimSpace(m[1])
		return payload, payload != ""
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed, true
	}

	return "", false
}

// sanitizeUTF8 removes invalid UTF-8 sequences from model output before it
// is returned to clients or stored.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}
