package ingestion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/tipindex/core"
)

var (
	textKeys     = []string{"text", "content", "advice"}
	categoryKeys = []string{"category", "type"}
	tagKeys      = []string{"tags", "keywords", "situation", "context"}
)

// maxExactFloat is the largest integer a float64 id can hold without rounding.
const maxExactFloat = 1 << 53

// Rejection records a raw tip skipped during a load.
type Rejection struct {
	Position int // 1-based position in the input
	Err      error
}

// Report summarizes a load.
type Report struct {
	Total      int
	Loaded     int
	Skipped    int
	Rejections []Rejection
}

// Loader normalizes raw tips into tip records.
type Loader struct {
	defaultSeverity string
	defaultSource   string
	logger          *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// WithDefaultSeverity sets the severity given to tips that carry none.
func WithDefaultSeverity(severity string) Option {
	return func(l *Loader) {
		l.defaultSeverity = severity
	}
}

// WithDefaultSource sets the provenance given to tips that carry none.
func WithDefaultSource(source string) Option {
	return func(l *Loader) {
		l.defaultSource = source
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load normalizes raws in order. Records without usable text or with a
// malformed id are skipped, logged and listed in the report. An id equal
// to one already assigned in the same load fails the whole load with a
// *core.DuplicateIDError.
func (l *Loader) Load(raws []core.RawTip) ([]core.TipRecord, *Report, error) {
	report := &Report{Total: len(raws)}
	tips := make([]core.TipRecord, 0, len(raws))
	assigned := make(map[core.ID]struct{}, len(raws))

	for i, raw := range raws {
		position := i + 1

		tip, explicit, err := l.normalize(raw, position)
		if err != nil {
			l.logger.Warn("skipping tip", "position", position, "err", err)
			report.Skipped++
			report.Rejections = append(report.Rejections, Rejection{Position: position, Err: err})
			continue
		}

		if _, taken := assigned[tip.Id]; taken {
			err := &core.DuplicateIDError{Id: tip.Id, Position: position, Explicit: explicit}
			l.logger.Error("corpus rejected", "err", err)
			return nil, report, err
		}
		assigned[tip.Id] = struct{}{}

		tips = append(tips, tip)
		report.Loaded++
	}

	l.logger.Debug("corpus loaded", "total", report.Total, "loaded", report.Loaded, "skipped", report.Skipped)
	return tips, report, nil
}

// normalize builds a tip from one raw record. explicit reports whether the
// id came from the record rather than its position.
func (l *Loader) normalize(raw core.RawTip, position int) (core.TipRecord, bool, error) {
	text := firstString(raw, textKeys)
	if text == "" {
		return core.TipRecord{}, false, ErrMissingText
	}

	id, explicit, err := parseID(raw["id"])
	if err != nil {
		return core.TipRecord{}, false, err
	}
	if !explicit {
		id = core.ID(position)
	}

	category := firstString(raw, categoryKeys)
	if category == "" {
		category = core.DefaultCategory
	}

	tip := core.TipRecord{
		Id:       id,
		Text:     text,
		Category: category,
		Tags:     mergeTags(raw),
		Severity: stringField(raw, "severity", l.defaultSeverity),
		Source:   stringField(raw, "source", l.defaultSource),
		Date:     stringField(raw, "date", ""),
	}
	return tip, explicit, nil
}

// firstString returns the first non-blank string value under keys, trimmed.
func firstString(raw core.RawTip, keys []string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringField(raw core.RawTip, key, fallback string) string {
	if s := firstString(raw, []string{key}); s != "" {
		return s
	}
	return fallback
}

// mergeTags flattens every tag-like field, dropping blanks and
// case-insensitive repeats. The first spelling of a tag wins.
func mergeTags(raw core.RawTip) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, key := range tagKeys {
		for _, tag := range stringList(raw[key]) {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			folded := strings.ToLower(tag)
			if _, dup := seen[folded]; dup {
				continue
			}
			seen[folded] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// parseID reads an explicit id. Missing, null, zero and blank ids are not
// explicit and leave the position to be used instead.
func parseID(v any) (core.ID, bool, error) {
	switch val := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return fromInt(n)
		}
		f, err := val.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q", core.ErrInvalidID, val.String())
		}
		return fromFloat(f)
	case float64:
		return fromFloat(val)
	case float32:
		return fromFloat(float64(val))
	case int:
		return fromInt(int64(val))
	case int32:
		return fromInt(int64(val))
	case int64:
		return fromInt(val)
	case uint:
		return fromUint(uint64(val))
	case uint32:
		return fromUint(uint64(val))
	case uint64:
		return fromUint(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %q", core.ErrInvalidID, val)
		}
		return fromUint(n)
	default:
		return 0, false, fmt.Errorf("%w: unsupported type %T", core.ErrInvalidID, v)
	}
}

func fromInt(n int64) (core.ID, bool, error) {
	if n < 0 {
		return 0, false, fmt.Errorf("%w: %d is negative", core.ErrInvalidID, n)
	}
	return fromUint(uint64(n))
}

func fromUint(n uint64) (core.ID, bool, error) {
	return core.ID(n), n != 0, nil
}

func fromFloat(f float64) (core.ID, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%w: %v is not an integer", core.ErrInvalidID, f)
	}
	if f < 0 || f > maxExactFloat {
		return 0, false, fmt.Errorf("%w: %v is out of range", core.ErrInvalidID, f)
	}
	return fromUint(uint64(f))
}
