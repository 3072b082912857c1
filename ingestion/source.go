package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/poiesic/tipindex/core"
)

// Source supplies raw tips.
type Source interface {
	Fetch(ctx context.Context) ([]core.RawTip, error)
}

// FileSource reads a JSON or YAML document from disk, chosen by extension.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]core.RawTip, error) {
	format, err := FormatFromPath(s.Path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(s.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return Decode(bytes.NewReader(data), format)
}

// ReaderSource decodes a document from a reader. The reader is consumed by
// the first Fetch.
type ReaderSource struct {
	Reader io.Reader
	Format Format
}

// NewReaderSource creates a source reading a document in format from r.
func NewReaderSource(r io.Reader, format Format) *ReaderSource {
	return &ReaderSource{Reader: r, Format: format}
}

// Fetch decodes the reader.
func (s *ReaderSource) Fetch(ctx context.Context) ([]core.RawTip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(s.Reader, s.Format)
}

// StaticSource serves tips already held in memory, such as a generated corpus.
type StaticSource []core.RawTip

// Fetch returns the tips.
func (s StaticSource) Fetch(ctx context.Context) ([]core.RawTip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFrom fetches raw tips from src and normalizes them with loader.
// A nil loader uses NewLoader().
func LoadFrom(ctx context.Context, src Source, loader *Loader) ([]core.TipRecord, *Report, error) {
	if src == nil {
		return nil, nil, ErrSourceRequired
	}
	if loader == nil {
		loader = NewLoader()
	}

	raws, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	return loader.Load(raws)
}
