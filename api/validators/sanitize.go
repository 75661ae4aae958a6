package validators

import "strings"

// SanitizeString trims whitespace and truncates to maxLen runes. Truncation
// happens on rune boundaries so multi-byte input is never split.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}
