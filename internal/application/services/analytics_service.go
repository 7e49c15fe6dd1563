package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
)

const (
	analyticsStoreKey     = "search:analytics"
	recentEventsInSummary = 10
)

// SearchIssue is a derived problem spotted while tracking events: a slow
// search, a failed search, or a query with no results.
type SearchIssue struct {
	Kind      string                 `json:"kind"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AnalyticsSummary is the session snapshot returned to observers.
type AnalyticsSummary struct {
	Session           entities.SearchSession `json:"session"`
	RecentEvents      []entities.SearchEvent `json:"recent_events"`
	TotalEvents       int                    `json:"total_events"`
	PerformanceIssues int                    `json:"performance_issues"`
	SearchIssues      int                    `json:"search_issues"`
}

type analyticsSnapshot struct {
	Events   []entities.SearchEvent             `json:"events"`
	Sessions map[string]*entities.SearchSession `json:"sessions"`
}

// SearchAnalyticsService collects search interaction events, keeps incremental
// per-session aggregates, and persists both through the key-value store. Store
// faults never interrupt normal operation.
type SearchAnalyticsService struct {
	store         providers.KVStore
	maxEvents     int
	slowThreshold time.Duration
	bus           providers.EventBus

	mu           sync.Mutex
	sessionID    string
	events       []entities.SearchEvent
	sessions     map[string]*entities.SearchSession
	perfIssues   []SearchIssue
	searchIssues []SearchIssue
	now          func() time.Time
}

// NewSearchAnalyticsService creates a collector for a fresh session.
func NewSearchAnalyticsService(store providers.KVStore, maxEvents int, slowThreshold time.Duration) *SearchAnalyticsService {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &SearchAnalyticsService{
		store:         store,
		maxEvents:     maxEvents,
		slowThreshold: slowThreshold,
		sessionID:     uuid.NewString(),
		sessions:      make(map[string]*entities.SearchSession),
		now:           time.Now,
	}
}

// PublishTo mirrors every tracked event onto the given bus, best-effort.
func (s *SearchAnalyticsService) PublishTo(bus providers.EventBus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus = bus
}

// SessionID returns the identifier events of this collector are stamped with.
func (s *SearchAnalyticsService) SessionID() string {
	return s.sessionID
}

// TrackEvent appends one event to the bounded log and updates the current
// session's aggregates. Slow completions become performance issues; failures
// and empty result sets become search issues.
func (s *SearchAnalyticsService) TrackEvent(eventType entities.SearchEventType, data map[string]interface{}) {
	s.mu.Lock()

	now := s.now()
	event := entities.SearchEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      data,
		SessionID: s.sessionID,
		Timestamp: now,
	}

	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}

	session := s.sessions[s.sessionID]
	if session == nil {
		session = &entities.SearchSession{SessionID: s.sessionID, StartedAt: now}
		s.sessions[s.sessionID] = session
	}

	switch eventType {
	case entities.EventSearchInitiated:
		session.SearchCount++
	case entities.EventSearchCompleted:
		session.SuccessCount++
		duration := durationFromData(data, "duration")
		session.TotalSearchTime += duration
		if session.SuccessCount > 0 {
			session.AvgSearchTime = session.TotalSearchTime / time.Duration(session.SuccessCount)
		}
		if s.slowThreshold > 0 && duration > s.slowThreshold {
			s.perfIssues = append(s.perfIssues, SearchIssue{Kind: "slow_search", Data: data, Timestamp: now})
		}
	case entities.EventSearchFailed:
		session.FailureCount++
		s.searchIssues = append(s.searchIssues, SearchIssue{Kind: "search_failed", Data: data, Timestamp: now})
	case entities.EventNoResults:
		s.searchIssues = append(s.searchIssues, SearchIssue{Kind: "no_results", Data: data, Timestamp: now})
	}
	bus := s.bus
	s.mu.Unlock()

	if bus != nil {
		if err := bus.Publish(context.Background(), providers.EventChannelSearchActivity, &event); err != nil {
			log.Debug().Err(err).Msg("failed to publish search event")
		}
	}
}

// Summary returns the current session snapshot plus the most recent events.
func (s *SearchAnalyticsService) Summary() AnalyticsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := entities.SearchSession{SessionID: s.sessionID}
	if current := s.sessions[s.sessionID]; current != nil {
		session = *current
	}

	recent := s.events
	if len(recent) > recentEventsInSummary {
		recent = recent[len(recent)-recentEventsInSummary:]
	}
	recentCopy := make([]entities.SearchEvent, len(recent))
	copy(recentCopy, recent)

	return AnalyticsSummary{
		Session:           session,
		RecentEvents:      recentCopy,
		TotalEvents:       len(s.events),
		PerformanceIssues: len(s.perfIssues),
		SearchIssues:      len(s.searchIssues),
	}
}

// SaveToStorage persists the event log and session table. Failures are logged
// and swallowed.
func (s *SearchAnalyticsService) SaveToStorage(ctx context.Context) {
	s.mu.Lock()
	snapshot := analyticsSnapshot{Events: s.events, Sessions: s.sessions}
	payload, err := json.Marshal(snapshot)
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("failed to serialize analytics")
		return
	}
	if err := s.store.Set(ctx, analyticsStoreKey, string(payload)); err != nil {
		log.Warn().Err(err).Msg("failed to persist analytics")
	}
}

// LoadFromStorage restores a previously persisted event log and session table.
// Missing or corrupt data degrades to an empty collector.
func (s *SearchAnalyticsService) LoadFromStorage(ctx context.Context) {
	raw, err := s.store.Get(ctx, analyticsStoreKey)
	if err != nil {
		return
	}

	var snapshot analyticsSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt analytics snapshot")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = snapshot.Events
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	if snapshot.Sessions != nil {
		s.sessions = snapshot.Sessions
	}
}

// durationFromData reads a duration out of a loosely typed event payload; it
// appears as time.Duration in-process and as nanoseconds after a JSON round
// trip.
func durationFromData(data map[string]interface{}, key string) time.Duration {
	switch v := data[key].(type) {
	case time.Duration:
		return v
	case float64:
		return time.Duration(v)
	case int64:
		return time.Duration(v)
	case int:
		return time.Duration(v)
	default:
		return 0
	}
}
