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
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tipindex/core"
)

// BatchResult is the outcome of one query of a batch.
type BatchResult struct {
	Query   string
	Results []core.ScoredTip
	Err     error
}

// SearchBatch runs queries concurrently on the engine's worker pool against
// a single snapshot of the corpus. Results are returned in query order and
// one failing query never affects the others. Queries that have not started
// when ctx is done report ctx.Err().
func (e *Engine) SearchBatch(ctx context.Context, queries []string) []BatchResult {
	snap := e.current()
	out := make([]BatchResult, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		out[i].Query = query
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return
			}
			out[i].Results, out[i].Err = e.search(snap, query, e.monitor)
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrEngineReleased
			}
			out[i].Err = err
		}
	}
	wg.Wait()

	return out
}
