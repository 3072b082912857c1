package search

import (
	"testing"

	"github.com/poiesic/tipindex/core"
	"github.com/stretchr/testify/assert"
)

func TestScorer_Score(t *testing.T) {
	s := NewScorer(DefaultWeights())

	tip := core.TipRecord{
		Id:       1,
		Text:     "Drink ginger tea for indigestion",
		Category: "Stomach",
		Tags:     []string{"Ginger", "digestion"},
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		// text 10, token text 5, token tag 2, exact tag 4
		{"single word in text and tag", "ginger", 21},
		{"case and space insensitive", "  GINGER ", 21},
		// category 8, token category 3
		{"category", "stomach", 11},
		// text 10, ginger 5 + 2, tea 5
		{"phrase in text", "ginger tea", 22},
		// "tea" 5, "stomach" 3
		{"words across fields", "tea stomach", 8},
		// token tag only
		{"tag substring", "digest", 17},
		{"no match", "sleep", 0},
		{"blank", "   ", 0},
		// punctuation splits tokens; no length filter
		{"short tokens", "tea, for", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tip, tt.query))
		})
	}
}

func TestScorer_RepeatedTokensCountTwice(t *testing.T) {
	s := NewScorer(DefaultWeights())
	tip := core.TipRecord{Id: 1, Text: "Drink water", Category: "hydration"}

	// full text 0 ("water water" absent) + 5 + 5
	assert.Equal(t, 10, s.Score(tip, "water water"))
}

func TestScorer_TagOrderIndependent(t *testing.T) {
	s := NewScorer(DefaultWeights())
	a := core.TipRecord{Id: 1, Text: "Rest", Category: "sleep", Tags: []string{"night", "bed", "rest"}}
	b := a.Clone()
	b.Tags = []string{"rest", "night", "bed"}

	for _, q := range []string{"rest", "bed night", "nig", "sleep rest"} {
		assert.Equal(t, s.Score(a, q), s.Score(b, q), "query %q", q)
		assert.Equal(t, s.Score(a, q), s.Score(a, q), "query %q", q)
	}
}

func TestScorer_CustomWeights(t *testing.T) {
	s := NewScorer(Weights{ExactTagMatch: 100})
	tip := core.TipRecord{Id: 1, Text: "Apply heat", Category: "muscle", Tags: []string{"back pain"}}

	assert.Equal(t, 100, s.Score(tip, "Back Pain"))
	assert.Equal(t, 0, s.Score(tip, "heat"))
}
