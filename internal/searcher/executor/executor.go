package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/merger"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
)

// DefaultLimit is the number of documents a query returns at most.
const DefaultLimit = 5

// Lookuper resolves a keyword to its occurrence list.
type Lookuper interface {
	Lookup(keyword string) (index.OccurrenceList, bool)
}

// Options tune a two-keyword search.
type Options struct {
	Limit  int
	Dedupe bool
}

// Search returns the documents matching kw1 or kw2, ranked by frequency.
// found is false when neither keyword is in the index; a found result always
// holds at least one document.
func Search(idx Lookuper, kw1, kw2 string, opts Options) (docs []string, found bool) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	l1, ok1 := idx.Lookup(tokenizer.FoldQuery(kw1))
	l2, ok2 := idx.Lookup(tokenizer.FoldQuery(kw2))
	switch {
	case !ok1 && !ok2:
		return nil, false
	case !ok2:
		return merger.Head(l1, limit, opts.Dedupe), true
	case !ok1:
		return merger.Head(l2, limit, opts.Dedupe), true
	default:
		return merger.Merge(l1, l2, limit, opts.Dedupe), true
	}
}

// SearchResult is the response for one two-keyword query. IndexID names the
// published index that answered it.
type SearchResult struct {
	Keyword1  string   `json:"kw1"`
	Keyword2  string   `json:"kw2"`
	Found     bool     `json:"found"`
	Documents []string `json:"documents"`
	IndexID   string   `json:"index_id"`
}

// IndexProvider hands out the currently published index, or nil before the
// first build.
type IndexProvider interface {
	Index() *index.Index
}

type Executor struct {
	indexes IndexProvider
	opts    Options
	logger  *slog.Logger
}

func New(indexes IndexProvider, opts Options) *Executor {
	return &Executor{
		indexes: indexes,
		opts:    opts,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Options returns the search options with the default limit applied.
func (e *Executor) Options() Options {
	opts := e.opts
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return opts
}

// Execute runs the query against the index published at call time.
func (e *Executor) Execute(ctx context.Context, kw1, kw2 string) (*SearchResult, error) {
	idx := e.indexes.Index()
	if idx == nil {
		return nil, apperrors.ErrIndexNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, found := Search(idx, kw1, kw2, e.opts)
	e.logger.Debug("query executed",
		"kw1", kw1,
		"kw2", kw2,
		"found", found,
		"results", len(docs),
	)
	return &SearchResult{
		Keyword1:  kw1,
		Keyword2:  kw2,
		Found:     found,
		Documents: docs,
		IndexID:   idx.ID(),
	}, nil
}
