package core

// ID identifies a tip within a loaded corpus.
// IDs are either supplied by the source data or assigned from the
// 1-based position of the record in its input sequence.
type ID uint64

// DefaultCategory is assigned to tips whose source record carries no category.
const DefaultCategory = "general"

// RawTip is a single decoded tip object as it arrived from a data source.
// Field names vary between sources (text/content/advice, tags/keywords, ...);
// the ingestion loader resolves them into a TipRecord.
type RawTip map[string]any

// TipRecord is one unit of advice in the corpus.
type TipRecord struct {
	Id       ID
	Text     string   // Primary searchable field, never empty
	Category string   // Display form; matched case-insensitively
	Tags     []string // Merged from tags/keywords/situation/context, original casing
	Severity string   // Optional, carried through untouched
	Source   string   // Optional provenance
	Date     string   // Optional provenance
}

// Clone returns a deep copy of the record so callers can't mutate
// the corpus held by an engine.
func (t TipRecord) Clone() TipRecord {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	return c
}

// ScoredTip pairs a tip with its relevance score for a query.
type ScoredTip struct {
	Tip   TipRecord
	Score int
}
