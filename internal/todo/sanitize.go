package todo

import "strings"

// maxContentRunes is the cap for the single-string content lineage.
// The richer structured candidates are not capped; the cap applies
// only where a candidate flattens into a content string.
const maxContentRunes = 50

// ellipsis is appended to truncated content.
const ellipsis = "..."

// SanitizeContent trims surrounding whitespace and caps the content
// at maxContentRunes runes, appending an ellipsis when truncated. The
// second return reports whether truncation happened.
func SanitizeContent(s string) (string, bool) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxContentRunes {
		return s, false
	}
	return string(runes[:maxContentRunes]) + ellipsis, true
}
