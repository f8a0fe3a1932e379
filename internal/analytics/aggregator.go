package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/kafka"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches    int64       `json:"total_searches"`
	NoMatchSearches  int64       `json:"no_match_searches"`
	CacheHits        int64       `json:"cache_hits"`
	CacheMisses      int64       `json:"cache_misses"`
	IndexBuilds      int64       `json:"index_builds"`
	LastBuildID      string      `json:"last_build_id,omitempty"`
	AvgLatencyMs     float64     `json:"avg_latency_ms"`
	P50LatencyMs     int64       `json:"p50_latency_ms"`
	P95LatencyMs     int64       `json:"p95_latency_ms"`
	P99LatencyMs     int64       `json:"p99_latency_ms"`
	TopQueries       []PairCount `json:"top_queries"`
	NoMatchQueries   []PairCount `json:"no_match_queries"`
	QueriesPerMinute float64     `json:"queries_per_minute"`
}

// PairCount counts one ordered keyword pair.
type PairCount struct {
	Keyword1 string `json:"kw1"`
	Keyword2 string `json:"kw2"`
	Count    int64  `json:"count"`
}

type pair struct{ kw1, kw2 string }

// Aggregator keeps running totals over the analytics event stream.
type Aggregator struct {
	mu          sync.RWMutex
	searches    int64
	noMatch     int64
	cacheHits   int64
	cacheMisses int64
	builds      int64
	lastBuildID string
	latencies   []int64
	next        int
	pairs       map[pair]int64
	noMatchers  map[pair]int64
	startTime   time.Time
	logger      *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:  make([]int64, 0, 1024),
		pairs:      make(map[pair]int64),
		noMatchers: make(map[pair]int64),
		startTime:  time.Now(),
		logger:     slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent decodes analytics messages by their type field and records
// them on agg. Unknown or malformed messages are skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		var envelope struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(value, &envelope); err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err, "key", string(key))
			return nil
		}
		switch envelope.Type {
		case EventSearch, EventNoMatch:
			event, err := kafka.DecodeJSON[SearchEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			agg.RecordSearch(event)
		case EventIndexBuilt:
			event, err := kafka.DecodeJSON[IndexEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode index event", "error", err)
				return nil
			}
			agg.RecordBuild(event)
		default:
			agg.logger.Debug("ignoring analytics event", "type", envelope.Type)
		}
		return nil
	}
}

func (a *Aggregator) RecordSearch(event SearchEvent) {
	p := pair{event.Keyword1, event.Keyword2}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.searches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.pairs[p]++
	if event.Type == EventNoMatch {
		a.noMatch++
		a.noMatchers[p]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) RecordBuild(event IndexEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.builds++
	a.lastBuildID = event.BuildID
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.searches,
		NoMatchSearches: a.noMatch,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		IndexBuilds:     a.builds,
		LastBuildID:     a.lastBuildID,
		TopQueries:      topN(a.pairs, 10),
		NoMatchQueries:  topN(a.noMatchers, 10),
	}
	if len(a.latencies) > 0 {
		sorted := append([]int64(nil), a.latencies...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

// StatsHandler serves the aggregated stats as JSON.
func (a *Aggregator) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(a.Stats()); err != nil {
			a.logger.Error("failed to write analytics response", "error", err)
		}
	}
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders pairs by count, breaking ties by keywords so output is stable.
func topN(counts map[pair]int64, n int) []PairCount {
	result := make([]PairCount, 0, len(counts))
	for p, count := range counts {
		result = append(result, PairCount{Keyword1: p.kw1, Keyword2: p.kw2, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		if result[i].Keyword1 != result[j].Keyword1 {
			return result[i].Keyword1 < result[j].Keyword1
		}
		return result[i].Keyword2 < result[j].Keyword2
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
