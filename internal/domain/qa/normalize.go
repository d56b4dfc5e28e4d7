package qa

import (
	"strings"
	"unicode"
)

// normalizeText lowercases, trims and folds punctuation and whitespace runs into single spaces.
func normalizeText(q string) string {
	lowered := strings.ToLower(strings.TrimSpace(q))
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// whitespace, punctuation and symbols all separate words
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}

func words(normalized string) []string {
	return strings.Fields(normalized)
}
