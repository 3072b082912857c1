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


package storage

import (
	"context"

	"github.com/poiesic/tipindex/core"
)

// TipRepository holds the raw tip catalogue a search engine is built from.
// It stores tips only; the search index is always rebuilt in memory.
// Implementations must be thread-safe and support concurrent access.
type TipRepository interface {
	// ReplaceTips atomically replaces the whole catalogue with tips,
	// whatever its size. Readers see the old or the new catalogue, never a mix.
	// The corpus is validated first; an invalid tip or a duplicate id
	// leaves the stored catalogue untouched.
	ReplaceTips(ctx context.Context, tips ...core.TipRecord) error

	// ListTips returns every stored tip in the order it was written.
	ListTips(ctx context.Context) ([]core.TipRecord, error)

	// GetTip retrieves a single tip by ID.
	// Returns ErrNotFound if the tip doesn't exist.
	GetTip(ctx context.Context, id core.ID) (*core.TipRecord, error)

	// CountTips returns the number of stored tips.
	CountTips(ctx context.Context) (int, error)

	// Close releases repository resources. The backend is closed separately.
	Close() error
}
