package search

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/tipindex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gingerCorpus() []core.TipRecord {
	return []core.TipRecord{
		{Id: 1, Text: "Drink ginger tea for indigestion", Category: "stomach", Tags: []string{"ginger", "digestion"}},
		{Id: 2, Text: "Walk 20 minutes daily", Category: "fitness", Tags: []string{"exercise"}},
	}
}

func newTestEngine(t *testing.T, tips []core.TipRecord, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(tips, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func resultIDs(results []core.ScoredTip) []core.ID {
	ids := make([]core.ID, len(results))
	for i, r := range results {
		ids[i] = r.Tip.Id
	}
	return ids
}

func recordIDs(tips []core.TipRecord) []core.ID {
	ids := make([]core.ID, len(tips))
	for i, tip := range tips {
		ids[i] = tip.Id
	}
	return ids
}

// recordingMonitor captures the candidate sets reported for each phase.
type recordingMonitor struct {
	mu       sync.Mutex
	query    string
	exact    []core.ID
	partial  []core.ID
	raw      []core.ID
	ranPart  bool
	ranRaw   bool
	finished int
}

func (m *recordingMonitor) Start(query string) { m.query = query }
func (m *recordingMonitor) AfterExactMatch(ids []core.ID) {
	m.exact = ids
}
func (m *recordingMonitor) AfterPartialMatch(ids []core.ID) {
	m.partial, m.ranPart = ids, true
}
func (m *recordingMonitor) AfterRawScan(ids []core.ID) {
	m.raw, m.ranRaw = ids, true
}
func (m *recordingMonitor) Finish(_ []core.ScoredTip, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished++
}

func TestNewEngine(t *testing.T) {
	t.Run("valid corpus", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus())
		assert.Equal(t, 2, e.Len())
	})

	t.Run("with custom logger", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus(), WithLogger(slog.Default()))
		assert.NotNil(t, e)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus(), WithLogger(nil))
		assert.NotNil(t, e.logger)
	})

	t.Run("duplicate id", func(t *testing.T) {
		tips := gingerCorpus()
		tips[1].Id = 1
		_, err := NewEngine(tips)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrDuplicateID)
	})

	t.Run("blank text", func(t *testing.T) {
		tips := gingerCorpus()
		tips[0].Text = "  "
		_, err := NewEngine(tips)
		assert.ErrorIs(t, err, core.ErrInvalidTip)
	})

	t.Run("invalid pool size", func(t *testing.T) {
		_, err := NewEngine(gingerCorpus(), WithPoolSize(0))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Weights.TokenTagMatch = -1
		_, err := NewEngine(gingerCorpus(), WithConfig(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestSearch_GingerScenario(t *testing.T) {
	e := newTestEngine(t, gingerCorpus())

	results, err := e.Search("ginger")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Tip.Id)
	assert.GreaterOrEqual(t, results[0].Score, 10)
	// 10 full text + 5 token text + 2 token tag + 4 exact tag
	assert.Equal(t, 21, results[0].Score)

	fitness := e.FilterByCategory("fitness")
	assert.Equal(t, []core.ID{2}, recordIDs(fitness))

	assert.Empty(t, e.RelatedTo(1, 0))
}

func TestSearch_VerbatimTagMatch(t *testing.T) {
	e := newTestEngine(t, []core.TipRecord{
		{Id: 1, Text: "Apply heat to sore muscles and practice gentle stretching exercises.", Category: "muscle", Tags: []string{"back pain", "posture"}},
		{Id: 2, Text: "Drink water before every meal.", Category: "hydration"},
	})

	results, err := e.Search("back pain")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Tip.Id)
	// 2 + 2 per tag-contained token, 4 for the equal tag
	assert.Equal(t, 8, results[0].Score)
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := newTestEngine(t, gingerCorpus())

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := e.Search(q)
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
		assert.Nil(t, results)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	e := newTestEngine(t, gingerCorpus())

	results, err := e.Search("zzzzqqq")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Determinism(t *testing.T) {
	e := newTestEngine(t, sampleCorpus())

	for _, q := range []string{"stress", "sleep water", "tea", "head"} {
		first, err := e.Search(q)
		require.NoError(t, err)
		second, err := e.Search(q)
		require.NoError(t, err)
		assert.Equal(t, first, second, "query %q", q)
	}
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	e := newTestEngine(t, []core.TipRecord{
		{Id: 7, Text: "Drink water", Category: "hydration"},
		{Id: 3, Text: "Drink water", Category: "hydration"},
		{Id: 5, Text: "Sip water slowly", Category: "hydration"},
	})

	results, err := e.Search("drink water")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []core.ID{7, 3, 5}, resultIDs(results))
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSearch_SortedByScore(t *testing.T) {
	e := newTestEngine(t, sampleCorpus())

	results, err := e.Search("stress sleep")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearch_Phases(t *testing.T) {
	t.Run("partial expansion grows exact candidates", func(t *testing.T) {
		e := newTestEngine(t, sampleCorpus())
		m := &recordingMonitor{}

		_, err := e.SearchWithMonitor("sleep", m)
		require.NoError(t, err)
		require.True(t, m.ranPart)
		assert.Subset(t, m.partial, m.exact)
		assert.False(t, m.ranRaw)
	})

	t.Run("substring of an index term", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus())
		m := &recordingMonitor{}

		results, err := e.SearchWithMonitor("digest", m)
		require.NoError(t, err)
		assert.Empty(t, m.exact)
		assert.Equal(t, []core.ID{1}, m.partial)
		assert.Equal(t, []core.ID{1}, resultIDs(results))
	})

	t.Run("partial expansion skipped above threshold", func(t *testing.T) {
		e := newTestEngine(t, sampleCorpus(), WithConfig(NewConfig(WithPartialThreshold(1))))
		m := &recordingMonitor{}

		_, err := e.SearchWithMonitor("stress", m)
		require.NoError(t, err)
		require.NotEmpty(t, m.exact)
		assert.False(t, m.ranPart)
	})

	t.Run("raw scan for short words", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus())
		m := &recordingMonitor{}

		results, err := e.SearchWithMonitor("20 m", m)
		require.NoError(t, err)
		assert.Empty(t, m.exact)
		assert.Empty(t, m.partial)
		require.True(t, m.ranRaw)
		assert.Equal(t, []core.ID{2}, m.raw)
		require.Len(t, results, 1)
		// 10 full text + 5 for "20" + 5 for "m"
		assert.Equal(t, 20, results[0].Score)
	})

	t.Run("raw scan not run when candidates exist", func(t *testing.T) {
		e := newTestEngine(t, gingerCorpus())
		m := &recordingMonitor{}

		_, err := e.SearchWithMonitor("ginger", m)
		require.NoError(t, err)
		assert.False(t, m.ranRaw)
		assert.Equal(t, 1, m.finished)
		assert.Equal(t, "ginger", m.query)
	})
}

func TestSearch_ExactPhraseAlwaysFound(t *testing.T) {
	tips := sampleCorpus()
	e := newTestEngine(t, tips)

	phrases := []string{
		"a short walk",
		"to",
		"of water",
		"Deep breathing",
		"before bed.",
	}
	for _, phrase := range phrases {
		results, err := e.Search(phrase)
		require.NoError(t, err)
		ids := resultIDs(results)
		for _, tip := range tips {
			if containsFold(tip.Text, phrase) {
				assert.Contains(t, ids, tip.Id, "phrase %q tip %d", phrase, tip.Id)
			}
		}
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	e := newTestEngine(t, nil)

	results, err := e.Search("anything")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, e.FilterByCategory("general"))
	assert.Empty(t, e.RelatedTo(1, 0))
	assert.Empty(t, e.Suggest("any", 0))
	assert.Equal(t, 0, e.Stats().Terms)
}

func TestSearch_ResultsAreCopies(t *testing.T) {
	e := newTestEngine(t, gingerCorpus())

	results, err := e.Search("ginger")
	require.NoError(t, err)
	require.Len(t, results, 1)
	results[0].Tip.Tags[0] = "mutated"

	again, err := e.Search("ginger")
	require.NoError(t, err)
	assert.Equal(t, "ginger", again[0].Tip.Tags[0])
}

func TestReload(t *testing.T) {
	e := newTestEngine(t, gingerCorpus())
	before := e.Stats()

	t.Run("replaces corpus", func(t *testing.T) {
		err := e.Reload([]core.TipRecord{
			{Id: 10, Text: "Stretch your calves after running", Category: "fitness"},
		})
		require.NoError(t, err)

		results, err := e.Search("ginger")
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = e.Search("calves")
		require.NoError(t, err)
		assert.Equal(t, []core.ID{10}, resultIDs(results))
		assert.NotEqual(t, before.Fingerprint, e.Stats().Fingerprint)
	})

	t.Run("failed reload keeps current corpus", func(t *testing.T) {
		err := e.Reload([]core.TipRecord{
			{Id: 1, Text: "one"},
			{Id: 1, Text: "two"},
		})
		require.ErrorIs(t, err, core.ErrDuplicateID)

		_, ok := e.Tip(10)
		assert.True(t, ok)
		assert.Equal(t, 1, e.Len())
	})

	t.Run("concurrent readers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					results, err := e.Search("calves ginger")
					assert.NoError(t, err)
					assert.LessOrEqual(t, len(results), 1)
				}
			}()
		}
		for i := 0; i < 10; i++ {
			corpus := gingerCorpus()
			if i%2 == 0 {
				corpus = []core.TipRecord{{Id: 10, Text: "Stretch your calves after running", Category: "fitness"}}
			}
			require.NoError(t, e.Reload(corpus))
		}
		wg.Wait()
	})
}

func TestTipAndStats(t *testing.T) {
	tips := gingerCorpus()
	e := newTestEngine(t, tips)

	tip, ok := e.Tip(2)
	require.True(t, ok)
	assert.Equal(t, "Walk 20 minutes daily", tip.Text)

	_, ok = e.Tip(99)
	assert.False(t, ok)

	stats := e.Stats()
	assert.Equal(t, 2, stats.Tips)
	assert.Equal(t, core.Fingerprint(tips), stats.Fingerprint)
	assert.False(t, stats.LoadedAt.IsZero())
	// drink ginger tea for indigestion walk minutes daily stomach fitness digestion exercise
	assert.Equal(t, 12, stats.Terms)
}

func TestSearchBatch(t *testing.T) {
	e := newTestEngine(t, gingerCorpus(), WithPoolSize(2))

	t.Run("isolates failures", func(t *testing.T) {
		out := e.SearchBatch(context.Background(), []string{"ginger", "   ", "fitness"})
		require.Len(t, out, 3)

		assert.NoError(t, out[0].Err)
		assert.Equal(t, []core.ID{1}, resultIDs(out[0].Results))

		assert.ErrorIs(t, out[1].Err, core.ErrEmptyQuery)
		assert.Equal(t, "   ", out[1].Query)

		assert.NoError(t, out[2].Err)
		assert.Equal(t, []core.ID{2}, resultIDs(out[2].Results))
	})

	t.Run("matches sequential search", func(t *testing.T) {
		queries := []string{"tea", "walk daily", "stomach", "exercise", "20 m"}
		out := e.SearchBatch(context.Background(), queries)
		for i, q := range queries {
			want, err := e.Search(q)
			require.NoError(t, err)
			assert.Equal(t, want, out[i].Results, "query %q", q)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := e.SearchBatch(ctx, []string{"ginger", "fitness"})
		for _, r := range out {
			assert.ErrorIs(t, r.Err, context.Canceled)
			assert.Nil(t, r.Results)
		}
	})

	t.Run("released engine", func(t *testing.T) {
		released, err := NewEngine(gingerCorpus())
		require.NoError(t, err)
		released.Release()

		out := released.SearchBatch(context.Background(), []string{"ginger"})
		assert.ErrorIs(t, out[0].Err, ErrEngineReleased)

		results, err := released.Search("ginger")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}
