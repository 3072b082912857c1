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


package tipindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/tipindex/ingestion"
	"github.com/poiesic/tipindex/search"
	"github.com/poiesic/tipindex/storage"
	"github.com/poiesic/tipindex/storage/badger"
)

// Catalog ties the durable tip catalogue to the in-memory search engines
// built from it.
type Catalog struct {
	backend *badger.Backend
	tipRepo storage.TipRepository
	loader  *ingestion.Loader
	logger  *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	inMemory   bool
	logger     *slog.Logger
	loaderOpts []ingestion.Option
}

// WithInMemory keeps the catalogue in memory only.
func WithInMemory() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger for the catalog, its storage and its loader.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoaderOptions configures how imported documents are normalized.
func WithLoaderOptions(opts ...ingestion.Option) CatalogOption {
	return func(o *catalogOptions) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

// OpenCatalog opens the catalogue stored at filePath. An empty path opens
// an in-memory catalogue.
func OpenCatalog(filePath string, opts ...CatalogOption) (*Catalog, error) {
	// Apply options
	options := &catalogOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory || filePath == "", badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	loaderOpts := append([]ingestion.Option{ingestion.WithLogger(options.logger)}, options.loaderOpts...)

	return &Catalog{
		backend: backend,
		tipRepo: badger.NewTipRepository(backend),
		loader:  ingestion.NewLoader(loaderOpts...),
		logger:  options.logger,
	}, nil
}

// Close closes the repository and the storage backend.
func (c *Catalog) Close() error {
	if err := c.tipRepo.Close(); err != nil {
		c.logger.Error("error closing tip repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// TipRepository returns the underlying repository.
func (c *Catalog) TipRepository() storage.TipRepository {
	return c.tipRepo
}

// Import loads src and replaces the stored catalogue with it. The report
// lists skipped records; on error the stored catalogue is unchanged.
func (c *Catalog) Import(ctx context.Context, src ingestion.Source) (*ingestion.Report, error) {
	tips, report, err := ingestion.LoadFrom(ctx, src, c.loader)
	if err != nil {
		return report, fmt.Errorf("import failed: %w", err)
	}

	if err := c.tipRepo.ReplaceTips(ctx, tips...); err != nil {
		return report, fmt.Errorf("import failed: %w", err)
	}

	c.logger.Info("catalogue imported", "loaded", report.Loaded, "skipped", report.Skipped)
	return report, nil
}

// NewEngine builds a search engine over the stored catalogue.
func (c *Catalog) NewEngine(ctx context.Context, opts ...search.Option) (*search.Engine, error) {
	tips, err := c.tipRepo.ListTips(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]search.Option{search.WithLogger(c.logger)}, opts...)
	return search.NewEngine(tips, opts...)
}

// Refresh reloads engine from the stored catalogue, typically after Import.
func (c *Catalog) Refresh(ctx context.Context, engine *search.Engine) error {
	tips, err := c.tipRepo.ListTips(ctx)
	if err != nil {
		return err
	}
	return engine.Reload(tips)
}
