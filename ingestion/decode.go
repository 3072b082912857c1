package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/poiesic/tipindex/core"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a tip document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file name extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Decode reads a tip document in the given format.
func Decode(r io.Reader, format Format) ([]core.RawTip, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DecodeJSON reads a JSON tip document: either an array of tips or an
// object with a "tips" array. Numbers are kept as json.Number so large
// ids survive intact.
func DecodeJSON(r io.Reader) ([]core.RawTip, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return rawTips(doc)
}

// DecodeYAML reads a YAML tip document with the same shape as DecodeJSON.
func DecodeYAML(r io.Reader) ([]core.RawTip, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return rawTips(doc)
}

// rawTips unwraps the tip list of a decoded document. Elements that are
// not objects become empty tips so the loader reports them by position.
func rawTips(doc any) ([]core.RawTip, error) {
	var list []any
	switch val := doc.(type) {
	case []any:
		list = val
	case map[string]any:
		tips, ok := val["tips"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: no tips list", ErrInvalidDocument)
		}
		list = tips
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrInvalidDocument, doc)
	}

	raws := make([]core.RawTip, len(list))
	for i, item := range list {
		raws[i] = asRawTip(item)
	}
	return raws, nil
}

func asRawTip(item any) core.RawTip {
	switch val := item.(type) {
	case map[string]any:
		return core.RawTip(val)
	case map[any]any:
		raw := make(core.RawTip, len(val))
		for k, v := range val {
			if key, ok := k.(string); ok {
				raw[key] = v
			}
		}
		return raw
	default:
		return core.RawTip{}
	}
}
