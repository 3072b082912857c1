// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tipindex/core"
)

// Engine answers keyword queries over an in-memory tip corpus.
// All query methods are read-only and safe for concurrent use; Reload
// replaces the corpus atomically.
type Engine struct {
	mu       sync.RWMutex
	snap     *snapshot
	config   *Config
	scorer   *Scorer
	monitor  Monitor
	pool     *ants.Pool
	poolSize int
	logger   *slog.Logger
}

// snapshot is an immutable corpus together with its index.
type snapshot struct {
	entries     []entry
	positions   map[core.ID]int
	index       *invertedIndex
	fingerprint string
	loadedAt    time.Time
}

// Stats describes the corpus currently served by an Engine.
type Stats struct {
	Tips        int
	Terms       int
	Fingerprint string
	LoadedAt    time.Time
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithConfig sets the tuning constants. Non-positive thresholds and limits
// take their defaults; weights are used as given.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) error {
		if cfg == nil {
			return nil
		}
		c := *cfg
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return err
		}
		e.config = &c
		return nil
	}
}

// WithMonitor sets the monitor used by Search and SearchBatch.
// Monitors given to SearchBatch run on several goroutines at once.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor != nil {
			e.monitor = monitor
		}
		return nil
	}
}

// WithPoolSize sets the number of SearchBatch workers, overriding the config.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be positive, got %d", ErrInvalidConfig, size)
		}
		e.poolSize = size
		return nil
	}
}

// NewEngine indexes tips and returns an engine serving them.
// It fails when the corpus holds an invalid tip or a duplicate id.
func NewEngine(tips []core.TipRecord, opts ...Option) (*Engine, error) {
	e := &Engine{
		config:  DefaultConfig(),
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.scorer = NewScorer(e.config.Weights)

	snap, err := e.buildSnapshot(tips)
	if err != nil {
		return nil, err
	}
	e.snap = snap

	size := e.poolSize
	if size == 0 {
		size = e.config.PoolSize
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	e.pool = pool

	e.logger.Debug("engine ready", "tips", len(snap.entries), "terms", snap.index.size(), "workers", size)
	return e, nil
}

// Release releases the batch worker pool.
// Search and the lookup methods keep working; SearchBatch fails afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Reload replaces the corpus and index. The new snapshot is built before
// any reader can observe it; on error the current corpus stays in place.
func (e *Engine) Reload(tips []core.TipRecord) error {
	snap, err := e.buildSnapshot(tips)
	if err != nil {
		e.logger.Error("corpus reload rejected", "err", err)
		return err
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	e.logger.Info("corpus reloaded", "tips", len(snap.entries), "terms", snap.index.size(), "fingerprint", snap.fingerprint)
	return nil
}

func (e *Engine) buildSnapshot(tips []core.TipRecord) (*snapshot, error) {
	if err := core.ValidateCorpus(tips); err != nil {
		return nil, err
	}

	entries := make([]entry, len(tips))
	positions := make(map[core.ID]int, len(tips))
	for pos, tip := range tips {
		entries[pos] = newEntry(tip.Clone())
		positions[tip.Id] = pos
	}

	return &snapshot{
		entries:     entries,
		positions:   positions,
		index:       buildIndex(entries, e.config.MinTokenLength),
		fingerprint: core.Fingerprint(tips),
		loadedAt:    time.Now().UTC(),
	}, nil
}

func (e *Engine) current() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Search returns the tips matching query, best first.
// A blank query fails with core.ErrEmptyQuery; no match is an empty result.
func (e *Engine) Search(query string) ([]core.ScoredTip, error) {
	return e.search(e.current(), query, e.monitor)
}

// SearchWithMonitor is Search reporting each retrieval phase to monitor.
// A nil monitor falls back to the engine's own.
func (e *Engine) SearchWithMonitor(query string, monitor Monitor) ([]core.ScoredTip, error) {
	if monitor == nil {
		monitor = e.monitor
	}
	return e.search(e.current(), query, monitor)
}

func (e *Engine) search(snap *snapshot, query string, monitor Monitor) ([]core.ScoredTip, error) {
	started := time.Now()

	q := normalizeQuery(query)
	if q == "" {
		return nil, core.ErrEmptyQuery
	}
	monitor.Start(q)

	tokens := significantWords(q, e.config.MinTokenLength)

	// 1. Exact token lookups
	candidates := make(postingSet)
	for _, token := range tokens {
		union(candidates, snap.index.lookup(token))
	}
	monitor.AfterExactMatch(snap.ids(candidates))

	// 2. Substring expansion against every index key
	if len(candidates) < e.config.PartialThreshold {
		for _, term := range snap.index.terms {
			for _, token := range tokens {
				if strings.Contains(term, token) || strings.Contains(token, term) {
					union(candidates, snap.index.lookup(term))
					break
				}
			}
		}
		monitor.AfterPartialMatch(snap.ids(candidates))
	}

	// 3. Raw scan for the whole query
	if len(candidates) == 0 {
		for pos, en := range snap.entries {
			if en.containsPhrase(q) {
				candidates[pos] = struct{}{}
			}
		}
		monitor.AfterRawScan(snap.ids(candidates))
	}

	positions := sortedPositions(candidates)
	results := make([]core.ScoredTip, 0, len(positions))
	for _, pos := range positions {
		en := snap.entries[pos]
		results = append(results, core.ScoredTip{
			Tip:   en.tip.Clone(),
			Score: e.scorer.score(en, q),
		})
	}
	// Stable sort keeps corpus order among equal scores.
	slices.SortStableFunc(results, func(a, b core.ScoredTip) int {
		return cmp.Compare(b.Score, a.Score)
	})

	elapsed := time.Since(started)
	monitor.Finish(results, elapsed)
	e.logger.Debug("search complete", "query", q, "results", len(results), "elapsed", elapsed)
	return results, nil
}

// containsPhrase reports whether text, category or any tag contains phrase.
func (en entry) containsPhrase(phrase string) bool {
	if strings.Contains(en.text, phrase) || strings.Contains(en.category, phrase) {
		return true
	}
	return anyTagContains(en.tags, phrase)
}

// ids maps a candidate set to tip ids in corpus order.
func (s *snapshot) ids(set postingSet) []core.ID {
	positions := sortedPositions(set)
	ids := make([]core.ID, len(positions))
	for i, pos := range positions {
		ids[i] = s.entries[pos].tip.Id
	}
	return ids
}

// Tip returns a copy of the tip with the given id.
func (e *Engine) Tip(id core.ID) (core.TipRecord, bool) {
	snap := e.current()
	pos, ok := snap.positions[id]
	if !ok {
		return core.TipRecord{}, false
	}
	return snap.entries[pos].tip.Clone(), true
}

// Len returns the number of tips in the corpus.
func (e *Engine) Len() int {
	return len(e.current().entries)
}

// Stats describes the current corpus.
func (e *Engine) Stats() Stats {
	snap := e.current()
	return Stats{
		Tips:        len(snap.entries),
		Terms:       snap.index.size(),
		Fingerprint: snap.fingerprint,
		LoadedAt:    snap.loadedAt,
	}
}
