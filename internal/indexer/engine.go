package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/metrics"
)

// BuildStats describes one completed index build.
type BuildStats struct {
	BuildID   string        `json:"build_id"`
	Documents int           `json:"documents"`
	Keywords  int           `json:"keywords"`
	Duration  time.Duration `json:"duration"`
	BuiltAt   time.Time     `json:"built_at"`
}

// Engine builds keyword indexes from a document source and publishes the
// latest one for readers.
type Engine struct {
	cfg      config.IndexerConfig
	docs     source.Documents
	metrics  *metrics.Metrics
	onBuild  func(BuildStats)
	logger   *slog.Logger
	current  atomic.Pointer[index.Index]
	building atomic.Bool
}

type Option func(*Engine)

// WithMetrics records build metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithBuildHook calls fn after every successful build.
func WithBuildHook(fn func(BuildStats)) Option {
	return func(e *Engine) { e.onBuild = fn }
}

func NewEngine(cfg config.IndexerConfig, docs source.Documents, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		docs:   docs,
		logger: slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Index returns the published index, or nil before the first build.
func (e *Engine) Index() *index.Index {
	return e.current.Load()
}

// Build loads the noise words and manifest, indexes every listed document
// and publishes the result. On any failure nothing is published and the
// previous index stays in place.
func (e *Engine) Build(ctx context.Context) (*index.Index, BuildStats, error) {
	if !e.building.CompareAndSwap(false, true) {
		return nil, BuildStats{}, apperrors.ErrBuildInProgress
	}
	defer e.building.Store(false)

	start := time.Now()
	idx, err := e.build(ctx, e.logger)
	if err != nil {
		e.observeBuild("failed", time.Since(start), nil)
		e.logger.Error("index build failed", "error", err)
		return nil, BuildStats{}, err
	}
	e.current.Store(idx)
	log := e.logger.With("build_id", idx.ID())

	stats := BuildStats{
		BuildID:   idx.ID(),
		Documents: idx.DocumentCount(),
		Keywords:  idx.KeywordCount(),
		Duration:  time.Since(start),
		BuiltAt:   idx.BuiltAt(),
	}
	e.observeBuild("ok", stats.Duration, idx)
	log.Info("index published",
		"documents", stats.Documents,
		"keywords", stats.Keywords,
		"duration", stats.Duration,
	)
	if e.onBuild != nil {
		e.onBuild(stats)
	}
	return idx, stats, nil
}

func (e *Engine) build(ctx context.Context, log *slog.Logger) (*index.Index, error) {
	noise := tokenizer.NoiseWords{}
	if e.cfg.NoiseWords != "" {
		var err error
		noise, err = source.LoadNoiseWords(e.cfg.NoiseWords)
		if err != nil {
			return nil, err
		}
	}
	names, err := e.manifest(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("building index",
		"documents", len(names),
		"noise_words", len(noise),
		"strict", e.cfg.StrictKeywords,
		"workers", e.cfg.ScanWorkers,
	)
	norm := tokenizer.New(noise, e.cfg.StrictKeywords)
	return BuildIndex(ctx, names, e.docs, norm, e.cfg.ScanWorkers)
}

// manifest lists the documents to index in merge order. A source that can
// list itself is authoritative for the postgres source kind or when no
// manifest file is configured.
func (e *Engine) manifest(ctx context.Context) ([]string, error) {
	lister, ok := e.docs.(source.Lister)
	if e.cfg.Manifest != "" && !(ok && e.cfg.Source == config.SourcePostgres) {
		return source.LoadManifest(e.cfg.Manifest)
	}
	if !ok {
		return nil, fmt.Errorf("no manifest configured and source cannot list documents: %w", apperrors.ErrInvalidInput)
	}
	names, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return names, nil
}

func (e *Engine) observeBuild(status string, d time.Duration, idx *index.Index) {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
	e.metrics.IndexBuildDuration.Observe(d.Seconds())
	if idx != nil {
		e.metrics.DocsIndexedTotal.Add(float64(idx.DocumentCount()))
		e.metrics.IndexKeywords.Set(float64(idx.KeywordCount()))
		e.metrics.IndexDocuments.Set(float64(idx.DocumentCount()))
	}
}

// BuildIndex scans names with up to workers concurrent readers and merges
// each document's keywords in manifest order. The first error cancels the
// remaining scans and no index is returned.
func BuildIndex(ctx context.Context, names []string, docs source.Documents, norm *tokenizer.Normalizer, workers int) (*index.Index, error) {
	if workers < 1 {
		workers = 1
	}
	scanned := make([]index.Keywords, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			kws, err := scanOne(gctx, docs, name, norm)
			if err != nil {
				return err
			}
			scanned[i] = kws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := index.NewBuilder()
	for i, name := range names {
		b.Merge(name, scanned[i])
		scanned[i] = nil
	}
	return b.Publish(), nil
}

func scanOne(ctx context.Context, docs source.Documents, name string, norm *tokenizer.Normalizer) (index.Keywords, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := docs.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("opening document %s: %w", name, err)
	}
	defer rc.Close()
	return index.ScanDocument(name, rc, norm)
}

// Rebuild runs a full build and swaps the published index on success.
func (e *Engine) Rebuild(ctx context.Context, reason string) (BuildStats, error) {
	e.logger.Info("index rebuild requested", "reason", reason)
	_, stats, err := e.Build(ctx)
	return stats, err
}
