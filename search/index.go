package search

import (
	"slices"

	"github.com/poiesic/tipindex/core"
)

// postingSet holds the corpus positions of the tips containing a token.
type postingSet map[int]struct{}

// invertedIndex maps normalized tokens to the tips that contain them.
// Keys are lower-cased text words of at least minTokenLength runes, and the
// full lower-cased category and tag strings of every tip.
type invertedIndex struct {
	postings map[string]postingSet
	terms    []string // sorted keys, for deterministic scans
}

// entry is a tip plus the lower-cased fields used for matching.
type entry struct {
	tip      core.TipRecord
	text     string
	category string
	tags     []string            // lower-cased, deduped, in tip order
	tagSet   map[string]struct{} // same values as tags
}

func newEntry(tip core.TipRecord) entry {
	e := entry{
		tip:      tip,
		text:     normalizeLabel(tip.Text),
		category: normalizeLabel(tip.Category),
		tagSet:   make(map[string]struct{}, len(tip.Tags)),
	}
	for _, tag := range tip.Tags {
		t := normalizeLabel(tag)
		if t == "" {
			continue
		}
		if _, seen := e.tagSet[t]; seen {
			continue
		}
		e.tagSet[t] = struct{}{}
		e.tags = append(e.tags, t)
	}
	return e
}

// buildIndex indexes every entry by its significant text words, its category
// and each of its tags. A posting set never holds the same position twice.
func buildIndex(entries []entry, minTokenLength int) *invertedIndex {
	idx := &invertedIndex{postings: make(map[string]postingSet)}

	for pos, e := range entries {
		for _, word := range significantWords(e.tip.Text, minTokenLength) {
			idx.add(word, pos)
		}
		if e.category != "" {
			idx.add(e.category, pos)
		}
		for _, tag := range e.tags {
			idx.add(tag, pos)
		}
	}

	idx.terms = make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		idx.terms = append(idx.terms, term)
	}
	slices.Sort(idx.terms)
	return idx
}

func (idx *invertedIndex) add(token string, pos int) {
	set, ok := idx.postings[token]
	if !ok {
		set = make(postingSet)
		idx.postings[token] = set
	}
	set[pos] = struct{}{}
}

// lookup returns the posting set for an exact token, or nil.
func (idx *invertedIndex) lookup(token string) postingSet {
	return idx.postings[token]
}

// size returns the number of distinct tokens.
func (idx *invertedIndex) size() int {
	return len(idx.terms)
}

// union adds every position in src to dst.
func union(dst, src postingSet) {
	for pos := range src {
		dst[pos] = struct{}{}
	}
}

// sortedPositions returns the positions of a set in ascending order.
func sortedPositions(set postingSet) []int {
	out := make([]int, 0, len(set))
	for pos := range set {
		out = append(out, pos)
	}
	slices.Sort(out)
	return out
}
