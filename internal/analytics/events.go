// Package analytics tracks query and rebuild events. A Collector buffers
// events and publishes them to Kafka; an Aggregator consumes the topic into
// an in-memory stats store served over HTTP.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventBooleanAnd EventType = "boolean_and"
	EventSuggest    EventType = "suggest"
	EventZeroResult EventType = "zero_result"
	EventRebuild    EventType = "rebuild"
)

type QueryEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

type RebuildEvent struct {
	Type        EventType `json:"type"`
	DocsIndexed int       `json:"docs_indexed"`
	Terms       int       `json:"terms"`
	Skipped     int       `json:"skipped"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}
