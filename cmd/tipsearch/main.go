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


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/tipindex"
	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/ingestion"
	"github.com/poiesic/tipindex/ingestion/s3"
	"github.com/poiesic/tipindex/metrics"
	"github.com/poiesic/tipindex/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB catalogue directory",
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "tipsearch",
		Usage: "Keyword search over a catalogue of health tips",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML file with search tuning",
				EnvVars: []string{"TIPSEARCH_CONFIG"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Replace the catalogue with a JSON or YAML tip document",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to a local tip document",
					},
					&cli.StringFlag{
						Name:  "s3-bucket",
						Usage: "Bucket holding the tip document",
					},
					&cli.StringFlag{
						Name:  "s3-key",
						Usage: "Object key of the tip document",
					},
					&cli.StringFlag{
						Name:    "s3-region",
						Usage:   "Region of the bucket",
						EnvVars: []string{"AWS_REGION"},
					},
					&cli.StringFlag{
						Name:    "s3-endpoint",
						Usage:   "Endpoint URL of an S3-compatible store",
						EnvVars: []string{"AWS_ENDPOINT_URL"},
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum fetch attempts",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
					&cli.StringFlag{
						Name:  "default-severity",
						Usage: "Severity given to tips without one",
					},
					&cli.StringFlag{
						Name:  "default-source",
						Usage: "Source given to tips without one",
					},
				},
			},
			{
				Name:   "generate",
				Usage:  "Write a synthetic tip document",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of tips to generate",
						Value:   500,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed",
						Value: 1,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (.json, .yaml or .yml); stdout when empty",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the catalogue",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results to print (0 prints all)",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "highlight",
						Usage: "Mark matched words in the output",
					},
				},
			},
			{
				Name:      "batch",
				Usage:     "Run many queries concurrently and report search metrics",
				ArgsUsage: "[query...]",
				Action:    batchCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "queries",
						Usage: "File with one query per line",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent searches (0 uses the config)",
					},
				},
			},
			{
				Name:      "category",
				Usage:     "List tips by category or tag",
				ArgsUsage: "<category>",
				Action:    categoryCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "related",
				Usage:  "List tips related to a tip",
				Action: relatedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Id of the source tip",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum related tips (0 uses the config)",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest index terms for partial input",
				ArgsUsage: "<input>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum suggestions (0 uses the config)",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Describe the stored catalogue",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	src, err := importSource(ctx, c)
	if err != nil {
		return err
	}
	src, err = ingestion.NewRetrySource(src, c.Int("max-retries"), c.Duration("retry-delay"))
	if err != nil {
		return err
	}

	var loaderOpts []ingestion.Option
	if s := c.String("default-severity"); s != "" {
		loaderOpts = append(loaderOpts, ingestion.WithDefaultSeverity(s))
	}
	if s := c.String("default-source"); s != "" {
		loaderOpts = append(loaderOpts, ingestion.WithDefaultSource(s))
	}

	catalog, err := tipindex.OpenCatalog(c.String("db"), tipindex.WithLoaderOptions(loaderOpts...))
	if err != nil {
		return fmt.Errorf("failed to open catalogue: %w", err)
	}
	defer catalog.Close()

	report, err := catalog.Import(ctx, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Imported %d of %d tips (%d skipped)\n", report.Loaded, report.Total, report.Skipped)
	for _, r := range report.Rejections {
		fmt.Fprintf(c.App.Writer, "  record %d: %v\n", r.Position, r.Err)
	}
	return nil
}

func importSource(ctx context.Context, c *cli.Context) (ingestion.Source, error) {
	file := c.String("file")
	bucket := c.String("s3-bucket")

	switch {
	case file != "" && bucket != "":
		return nil, fmt.Errorf("use either --file or --s3-bucket, not both")
	case file != "":
		return ingestion.NewFileSource(file), nil
	case bucket != "":
		client, err := s3.NewClient(ctx, s3.ClientConfig{
			Region:          c.String("s3-region"),
			Endpoint:        c.String("s3-endpoint"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, err
		}
		src, err := s3.NewSource(client, bucket, c.String("s3-key"))
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("a tip document is required: set --file or --s3-bucket")
	}
}

func generateCommand(c *cli.Context) error {
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	doc := map[string]any{"tips": ingestion.Generate(count, c.Int64("seed"))}

	out := c.String("out")
	if out == "" {
		return writeJSON(c.App.Writer, doc)
	}

	format, err := ingestion.FormatFromPath(out)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if format == ingestion.FormatYAML {
		enc := yaml.NewEncoder(f)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return writeJSON(f, doc)
}

func writeJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// openEngine opens the catalogue and builds an engine with the configured tuning.
func openEngine(c *cli.Context, opts ...search.Option) (*tipindex.Catalog, *search.Engine, error) {
	ctx := context.Background()

	if path := c.String("config"); path != "" {
		cfg, err := search.LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		opts = append([]search.Option{search.WithConfig(cfg)}, opts...)
	}

	catalog, err := tipindex.OpenCatalog(c.String("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalogue: %w", err)
	}

	engine, err := catalog.NewEngine(ctx, opts...)
	if err != nil {
		catalog.Close()
		return nil, nil, err
	}
	return catalog, engine, nil
}

func closeEngine(catalog *tipindex.Catalog, engine *search.Engine) {
	engine.Release()
	if err := catalog.Close(); err != nil {
		slog.Error("error closing catalogue", "err", err)
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	catalog, engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	results, err := engine.Search(query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(c.App.Writer, "No tips found for %q\n", query)
		return nil
	}

	limit := c.Int("limit")
	for i, r := range results {
		if limit > 0 && i == limit {
			fmt.Fprintf(c.App.Writer, "... %d more\n", len(results)-limit)
			break
		}
		text := r.Tip.Text
		if c.Bool("highlight") {
			text = markSpans(text, search.Highlight(text, query))
		}
		fmt.Fprintf(c.App.Writer, "%4d  #%-5d [%s] %s\n", r.Score, r.Tip.Id, r.Tip.Category, text)
	}
	return nil
}

// markSpans wraps every span of text in asterisks.
func markSpans(text string, spans []search.Span) string {
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.Start])
		b.WriteString("*")
		b.WriteString(text[s.Start:s.End])
		b.WriteString("*")
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func batchCommand(c *cli.Context) error {
	queries := c.Args().Slice()
	if path := c.String("queries"); path != "" {
		lines, err := readLines(path)
		if err != nil {
			return err
		}
		queries = append(queries, lines...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries given")
	}

	reg := prometheus.NewRegistry()
	monitor, err := metrics.NewMonitor(reg, "tipsearch")
	if err != nil {
		return err
	}

	opts := []search.Option{search.WithMonitor(monitor)}
	if n := c.Int("workers"); n > 0 {
		opts = append(opts, search.WithPoolSize(n))
	}
	catalog, engine, err := openEngine(c, opts...)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	for _, r := range engine.SearchBatch(context.Background(), queries) {
		if r.Err != nil {
			fmt.Fprintf(c.App.Writer, "%-30q error: %v\n", r.Query, r.Err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%-30q %d results\n", r.Query, len(r.Results))
	}

	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(c.App.Writer, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(c.App.Writer, "%s{%s} count=%d sum=%g\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func categoryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a category is required")
	}
	catalog, engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	printTips(c.App.Writer, engine.FilterByCategory(strings.Join(c.Args().Slice(), " ")))
	return nil
}

func relatedCommand(c *cli.Context) error {
	catalog, engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	id := core.ID(c.Uint64("id"))
	if _, ok := engine.Tip(id); !ok {
		fmt.Fprintf(c.App.Writer, "No tip with id %d\n", id)
		return nil
	}
	printTips(c.App.Writer, engine.RelatedTo(id, c.Int("limit")))
	return nil
}

func suggestCommand(c *cli.Context) error {
	catalog, engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	for _, term := range engine.Suggest(c.Args().First(), c.Int("limit")) {
		fmt.Fprintln(c.App.Writer, term)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	catalog, engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine(catalog, engine)

	stats := engine.Stats()
	fmt.Fprintf(c.App.Writer, "Tips:        %d\n", stats.Tips)
	fmt.Fprintf(c.App.Writer, "Terms:       %d\n", stats.Terms)
	fmt.Fprintf(c.App.Writer, "Categories:  %d\n", len(engine.Categories()))
	fmt.Fprintf(c.App.Writer, "Fingerprint: %s\n", stats.Fingerprint)
	return nil
}

func printTips(w io.Writer, tips []core.TipRecord) {
	if len(tips) == 0 {
		fmt.Fprintln(w, "No tips found")
		return
	}
	for _, tip := range tips {
		fmt.Fprintf(w, "#%-5d [%s] %s\n", tip.Id, tip.Category, tip.Text)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
