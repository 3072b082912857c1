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


package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/storage"
)

// ctxCheckInterval is how many tips are written between context checks.
const ctxCheckInterval = 1024

// TipRepository stores the tip catalogue in BadgerDB.
//
// Each catalogue is written under its own generation and the tipgen key
// names the live one. Readers resolve the generation inside their
// transaction, so they always see one complete catalogue.
type TipRepository struct {
	backend *Backend
	mu      sync.Mutex // serializes ReplaceTips
}

var _ storage.TipRepository = (*TipRepository)(nil)

// NewTipRepository creates a new TipRepository.
func NewTipRepository(backend *Backend) *TipRepository {
	return &TipRepository{backend: backend}
}

// Close is a no-op; the backend is closed by its owner.
func (r *TipRepository) Close() error {
	return nil
}

// ReplaceTips writes tips as a new generation in batches, then switches the
// live generation in one small transaction. The size of the catalogue is not
// bounded by BadgerDB's transaction limit.
func (r *TipRepository) ReplaceTips(ctx context.Context, tips ...core.TipRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateCorpus(tips); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var current uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		current, err = liveGeneration(tx)
		return err
	}, false)
	if err != nil {
		return err
	}
	next := current + 1

	// An interrupted replace may have left a partial generation behind.
	if err := r.dropGenerations(func(gen uint64) bool { return gen == next }); err != nil {
		return err
	}
	if err := r.writeGeneration(ctx, next, tips); err != nil {
		return err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(tipGenerationKey), encodeGeneration(next)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if err := r.dropGenerations(func(gen uint64) bool { return gen != next }); err != nil {
		// The new catalogue is live; stale keys are dropped on the next replace.
		r.backend.logger.Warn("failed to drop previous catalogue", "generation", current, "err", err)
	}
	r.backend.logger.Debug("catalogue replaced", "tips", len(tips), "generation", next)
	return nil
}

// writeGeneration stores tips and their id lookups under gen.
func (r *TipRepository) writeGeneration(ctx context.Context, gen uint64, tips []core.TipRecord) error {
	wb, err := r.backend.NewWriteBatch()
	if err != nil {
		return err
	}

	for pos := range tips {
		if pos%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				wb.Cancel()
				return err
			}
		}
		tip := &tips[pos]
		recordKey := makeTipRecordKey(gen, pos)
		if err := wb.Set(recordKey, storage.MarshalTip(tip)); err != nil {
			wb.Cancel()
			return err
		}
		if err := wb.Set(makeTipIDKey(gen, tip.Id), recordKey); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// dropGenerations deletes the record and id keys of every generation
// matched by drop.
func (r *TipRepository) dropGenerations(drop func(gen uint64) bool) error {
	var stale [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range []string{tipRecordPrefix, tipIDPrefix} {
			keys, err := collectKeys(tx, []byte(prefix))
			if err != nil {
				return err
			}
			for _, key := range keys {
				gen, err := generationFromKey(prefix, key)
				if err != nil {
					return err
				}
				if drop(gen) {
					stale = append(stale, key)
				}
			}
		}
		return nil
	}, false)
	if err != nil || len(stale) == 0 {
		return err
	}

	wb, err := r.backend.NewWriteBatch()
	if err != nil {
		return err
	}
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// liveGeneration returns the generation readers should see, 0 when no
// catalogue was ever written.
func liveGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(tipGenerationKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		gen, err = decodeGeneration(val)
		return err
	})
	return gen, err
}

// collectKeys copies every key under prefix.
func collectKeys(tx *badger.Txn, prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys, nil
}

// ListTips returns the catalogue in corpus order.
func (r *TipRepository) ListTips(ctx context.Context) ([]core.TipRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tips []core.TipRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil || gen == 0 {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = generationPrefix(tipRecordPrefix, gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if _, err := positionFromRecordKey(item.Key()); err != nil {
				return err
			}
			err := item.Value(func(val []byte) error {
				tip, err := storage.UnmarshalTip(val)
				if err != nil {
					return err
				}
				tips = append(tips, *tip)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return tips, nil
}

// GetTip retrieves a single tip by ID.
func (r *TipRepository) GetTip(ctx context.Context, id core.ID) (*core.TipRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tip *core.TipRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil {
			return err
		}
		ref, err := tx.Get(makeTipIDKey(gen, id))
		if err != nil {
			return err
		}
		recordKey, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := tx.Get(recordKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tip, err = storage.UnmarshalTip(val)
			return err
		})
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tip, nil
}

// CountTips returns the number of stored tips.
func (r *TipRepository) CountTips(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := liveGeneration(tx)
		if err != nil || gen == 0 {
			return err
		}
		keys, err := collectKeys(tx, generationPrefix(tipIDPrefix, gen))
		count = len(keys)
		return err
	}, false)
	return count, err
}
