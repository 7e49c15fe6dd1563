package entities

import (
	"time"
)

// SearchEventType enumerates the analytics events emitted by the search engine.
type SearchEventType string

const (
	EventSearchInitiated SearchEventType = "search_initiated"
	EventSearchCompleted SearchEventType = "search_completed"
	EventSearchFailed    SearchEventType = "search_failed"
	EventNoResults       SearchEventType = "no_results"
	EventFilterChanged   SearchEventType = "filter_changed"
)

// SearchEvent represents a single search interaction for analytics.
type SearchEvent struct {
	ID        string                 `json:"id"`
	Type      SearchEventType        `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
}

// SearchSession aggregates the search activity of one browsing session.
// Counters are updated incrementally as events arrive, never by replay.
type SearchSession struct {
	SessionID       string        `json:"session_id"`
	SearchCount     int           `json:"search_count"`
	SuccessCount    int           `json:"success_count"`
	FailureCount    int           `json:"failure_count"`
	TotalSearchTime time.Duration `json:"total_search_time"`
	AvgSearchTime   time.Duration `json:"avg_search_time"`
	StartedAt       time.Time     `json:"started_at"`
}
