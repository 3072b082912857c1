package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) storage.TipRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func catalogue() []core.TipRecord {
	return []core.TipRecord{
		{Id: 300, Text: "Drink ginger tea for indigestion", Category: "stomach", Tags: []string{"ginger", "digestion"}},
		{Id: 2, Text: "Walk 20 minutes daily", Category: "fitness", Tags: []string{"exercise"}, Severity: "mild"},
		{Id: 41, Text: "Sleep seven hours", Category: "sleep"},
	}
}

func TestTipRepository_ReplaceAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	t.Run("empty catalogue", func(t *testing.T) {
		tips, err := repo.ListTips(ctx)
		require.NoError(t, err)
		assert.Empty(t, tips)

		count, err := repo.CountTips(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("keeps corpus order", func(t *testing.T) {
		require.NoError(t, repo.ReplaceTips(ctx, catalogue()...))

		tips, err := repo.ListTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, catalogue(), tips)

		count, err := repo.CountTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("replace drops old tips", func(t *testing.T) {
		replacement := []core.TipRecord{{Id: 7, Text: "Stretch", Category: "fitness"}}
		require.NoError(t, repo.ReplaceTips(ctx, replacement...))

		tips, err := repo.ListTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, replacement, tips)

		_, err = repo.GetTip(ctx, 300)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid corpus leaves catalogue untouched", func(t *testing.T) {
		err := repo.ReplaceTips(ctx,
			core.TipRecord{Id: 1, Text: "a"},
			core.TipRecord{Id: 1, Text: "b"},
		)
		assert.ErrorIs(t, err, core.ErrDuplicateID)

		err = repo.ReplaceTips(ctx, core.TipRecord{Id: 1, Text: " "})
		assert.ErrorIs(t, err, core.ErrInvalidTip)

		count, err := repo.CountTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestTipRepository_GetTip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceTips(ctx, catalogue()...))

	tip, err := repo.GetTip(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Walk 20 minutes daily", tip.Text)
	assert.Equal(t, "mild", tip.Severity)

	_, err = repo.GetTip(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTipRepository_CancelledContext(t *testing.T) {
	repo := newTestRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.ReplaceTips(ctx, catalogue()...), context.Canceled)
	_, err := repo.ListTips(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.GetTip(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.CountTips(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTipRepository_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NoError(t, NewTipRepository(backend).ReplaceTips(ctx, catalogue()...))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	tips, err := NewTipRepository(backend).ListTips(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalogue(), tips)
}

func TestKeys(t *testing.T) {
	a := makeTipRecordKey(1, 1)
	b := makeTipRecordKey(1, 256)
	assert.Less(t, string(a), string(b))
	assert.Less(t, string(b), string(makeTipRecordKey(2, 0)))

	pos, err := positionFromRecordKey(b)
	require.NoError(t, err)
	assert.Equal(t, 256, pos)

	gen, err := generationFromKey(tipIDPrefix, makeTipIDKey(7, 300))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), gen)

	_, err = positionFromRecordKey([]byte("tiprec:"))
	assert.ErrorIs(t, err, storage.ErrTruncatedData)
	_, err = generationFromKey(tipRecordPrefix, []byte("tiprec:"))
	assert.ErrorIs(t, err, storage.ErrTruncatedData)
}

// countKeys counts raw keys under prefix across every generation.
func countKeys(t *testing.T, backend *Backend, prefix string) int {
	t.Helper()
	var n int
	err := backend.WithTx(func(tx *badger.Txn) error {
		keys, err := collectKeys(tx, []byte(prefix))
		n = len(keys)
		return err
	}, false)
	require.NoError(t, err)
	return n
}

func TestTipRepository_Generations(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	repo := NewTipRepository(backend)

	t.Run("replace drops the previous generation", func(t *testing.T) {
		require.NoError(t, repo.ReplaceTips(ctx, catalogue()...))
		require.NoError(t, repo.ReplaceTips(ctx, catalogue()[:1]...))

		assert.Equal(t, 1, countKeys(t, backend, tipRecordPrefix))
		assert.Equal(t, 1, countKeys(t, backend, tipIDPrefix))
	})

	t.Run("partial generation is ignored and overwritten", func(t *testing.T) {
		// Simulate a replace interrupted before the switch: records of the
		// next generation exist but tipgen still names the current one.
		err := backend.WithTx(func(tx *badger.Txn) error {
			gen, err := liveGeneration(tx)
			if err != nil {
				return err
			}
			for pos, tip := range catalogue() {
				if err := tx.Set(makeTipRecordKey(gen+1, pos), storage.MarshalTip(&tip)); err != nil {
					return err
				}
				if err := tx.Set(makeTipIDKey(gen+1, tip.Id), makeTipRecordKey(gen+1, pos)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		require.NoError(t, err)

		tips, err := repo.ListTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, catalogue()[:1], tips)

		replacement := []core.TipRecord{{Id: 41, Text: "Nap after lunch", Category: "sleep"}}
		require.NoError(t, repo.ReplaceTips(ctx, replacement...))

		tips, err = repo.ListTips(ctx)
		require.NoError(t, err)
		assert.Equal(t, replacement, tips)

		_, err = repo.GetTip(ctx, 2)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Equal(t, 1, countKeys(t, backend, tipRecordPrefix))
	})
}

func TestTipRepository_LargeCatalogue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large catalogue in short mode")
	}
	ctx := context.Background()
	repo := newTestRepository(t)

	const n = 60000
	tips := make([]core.TipRecord, n)
	for i := range tips {
		tips[i] = core.TipRecord{
			Id:       core.ID(i + 1),
			Text:     fmt.Sprintf("Drink a glass of water before meal %d", i),
			Category: "hydration",
			Tags:     []string{"water", "habit"},
		}
	}
	require.NoError(t, repo.ReplaceTips(ctx, tips...))

	count, err := repo.CountTips(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	tip, err := repo.GetTip(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, tips[n-1].Text, tip.Text)

	// A second large replace must also fit.
	require.NoError(t, repo.ReplaceTips(ctx, tips[:n/2]...))
	count, err = repo.CountTips(ctx)
	require.NoError(t, err)
	assert.Equal(t, n/2, count)
}
