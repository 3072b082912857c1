package search

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) in a text.
type Span struct {
	Start int
	End   int
}

// Highlight returns the byte ranges of text matching any query word of three
// or more runes, ignoring case. Ranges are sorted and do not overlap.
func Highlight(text, query string) []Span {
	words := significantWords(query, 3)
	if len(words) == 0 || text == "" {
		return nil
	}

	// Longest first so that overlapping words prefer the longer match.
	slices.SortFunc(words, func(a, b string) int {
		if c := cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	words = slices.Compact(words)

	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))

	matches := re.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, Span{Start: m[0], End: m[1]})
	}
	return spans
}
