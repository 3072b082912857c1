package search

import (
	"strings"
	"unicode/utf8"
)

// Suggest returns index terms containing input, in lexical order, for
// search-as-you-type. Inputs shorter than two runes return nothing;
// limit <= 0 uses the configured SuggestLimit.
func (e *Engine) Suggest(input string, limit int) []string {
	needle := normalizeQuery(input)
	if utf8.RuneCountInString(needle) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = e.config.SuggestLimit
	}

	var out []string
	for _, term := range e.current().index.terms {
		if strings.Contains(term, needle) {
			out = append(out, term)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
