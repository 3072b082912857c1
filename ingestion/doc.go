// Package ingestion turns raw tip documents into validated tip corpora.
//
// The Loader normalizes arbitrarily shaped tip objects into core.TipRecord
// values:
//   - Text comes from "text", "content" or "advice"
//   - Category comes from "category" or "type", defaulting to "general"
//   - Tags are merged from "tags", "keywords", "situation" and "context"
//   - Ids are taken from "id" or assigned from the input position
//
// Records without text are skipped and reported; a duplicate id fails the
// whole load. Sources fetch raw tips from files, readers, S3 buckets or
// memory, and Generate builds synthetic corpora for demos and benchmarks.
package ingestion
