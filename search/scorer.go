package search

import (
	"strings"

	"github.com/poiesic/tipindex/core"
)

// Weights are the additive relevance rules applied to each candidate.
// The defaults reproduce the long-standing tuning of the tip collection;
// there is no length or frequency normalization.
type Weights struct {
	FullTextMatch      int `yaml:"full_text_match"`      // whole query found in the text
	FullCategoryMatch  int `yaml:"full_category_match"`  // whole query found in the category
	TokenTextMatch     int `yaml:"token_text_match"`     // per query word found in the text
	TokenCategoryMatch int `yaml:"token_category_match"` // per query word found in the category
	TokenTagMatch      int `yaml:"token_tag_match"`      // per query word found inside any tag
	ExactTagMatch      int `yaml:"exact_tag_match"`      // a tag equal to the whole query
}

// DefaultWeights returns the default scoring policy.
func DefaultWeights() Weights {
	return Weights{
		FullTextMatch:      10,
		FullCategoryMatch:  8,
		TokenTextMatch:     5,
		TokenCategoryMatch: 3,
		TokenTagMatch:      2,
		ExactTagMatch:      4,
	}
}

// Scorer computes relevance scores. It is stateless apart from its weights
// and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns the relevance of tip for query, always >= 0 with
// non-negative weights. The query is trimmed and lower-cased first; matching
// is case-insensitive substring containment.
func (s *Scorer) Score(tip core.TipRecord, query string) int {
	return s.score(newEntry(tip), normalizeQuery(query))
}

// score works on a pre-normalized entry and query.
func (s *Scorer) score(e entry, query string) int {
	if query == "" {
		return 0
	}

	var score int
	if strings.Contains(e.text, query) {
		score += s.weights.FullTextMatch
	}
	if strings.Contains(e.category, query) {
		score += s.weights.FullCategoryMatch
	}

	for _, word := range splitWords(query) {
		if strings.Contains(e.text, word) {
			score += s.weights.TokenTextMatch
		}
		if strings.Contains(e.category, word) {
			score += s.weights.TokenCategoryMatch
		}
		if anyTagContains(e.tags, word) {
			score += s.weights.TokenTagMatch
		}
	}

	if _, ok := e.tagSet[query]; ok {
		score += s.weights.ExactTagMatch
	}
	return score
}

func anyTagContains(tags []string, word string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, word) {
			return true
		}
	}
	return false
}
