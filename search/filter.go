package search

import "github.com/poiesic/tipindex/core"

// FilterByCategory returns, in corpus order, the tips whose category or any
// tag equals category, ignoring case. A blank category matches nothing.
func (e *Engine) FilterByCategory(category string) []core.TipRecord {
	label := normalizeLabel(category)
	if label == "" {
		return nil
	}

	snap := e.current()
	var out []core.TipRecord
	for _, en := range snap.entries {
		if en.category == label {
			out = append(out, en.tip.Clone())
			continue
		}
		if _, ok := en.tagSet[label]; ok {
			out = append(out, en.tip.Clone())
		}
	}
	return out
}

// Categories returns the distinct categories in corpus order. Categories
// that differ only in case are one category, shown as first spelled.
func (e *Engine) Categories() []string {
	snap := e.current()
	seen := make(map[string]struct{})
	var out []string
	for _, en := range snap.entries {
		if _, ok := seen[en.category]; ok {
			continue
		}
		seen[en.category] = struct{}{}
		out = append(out, en.tip.Category)
	}
	return out
}

// RelatedTo returns up to limit tips related to the tip with the given id,
// in corpus order. A tip is related when it has the same category, ignoring
// case, or shares at least MinSharedTags tags. The tip itself is never
// included. An unknown id yields an empty result; limit <= 0 uses
// the configured RelatedLimit.
func (e *Engine) RelatedTo(id core.ID, limit int) []core.TipRecord {
	if limit <= 0 {
		limit = e.config.RelatedLimit
	}

	snap := e.current()
	pos, ok := snap.positions[id]
	if !ok {
		return nil
	}
	source := snap.entries[pos]

	var out []core.TipRecord
	for i, en := range snap.entries {
		if len(out) == limit {
			break
		}
		if i == pos || en.tip.Id == id {
			continue
		}
		if en.category == source.category || sharedTags(source, en) >= e.config.MinSharedTags {
			out = append(out, en.tip.Clone())
		}
	}
	return out
}

func sharedTags(a, b entry) int {
	n := 0
	for _, tag := range b.tags {
		if _, ok := a.tagSet[tag]; ok {
			n++
		}
	}
	return n
}
