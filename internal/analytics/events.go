package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventNoMatch    EventType = "no_match"
	EventIndexBuilt EventType = "index_built"
)

type SearchEvent struct {
	Type      EventType `json:"type"`
	Keyword1  string    `json:"kw1"`
	Keyword2  string    `json:"kw2"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

type IndexEvent struct {
	Type       EventType `json:"type"`
	BuildID    string    `json:"build_id"`
	Documents  int       `json:"documents"`
	Keywords   int       `json:"keywords"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
