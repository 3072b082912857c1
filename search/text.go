package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r belongs to a word: letters, digits and underscore.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// splitWords lower-cases text and splits it on runs of non-word runes.
// Empty fields are never returned.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

// significantWords returns the words of text whose rune length is at least minLen.
// Duplicates are kept; callers that need a set dedupe themselves.
func significantWords(text string, minLen int) []string {
	words := splitWords(text)
	kept := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minLen {
			kept = append(kept, w)
		}
	}
	return kept
}

// normalizeQuery trims and lower-cases a raw query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// normalizeLabel is the matching form of a category or tag.
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
