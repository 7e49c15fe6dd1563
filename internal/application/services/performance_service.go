package services

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

const maxPerformanceRecords = 200

// RecordInput describes one completed search for performance tracking.
type RecordInput struct {
	Duration    time.Duration
	ResultCount int
	CacheHit    bool
	Query       entities.SearchQuery
}

// PerformanceRecord is one stored measurement.
type PerformanceRecord struct {
	ID              string        `json:"id"`
	Duration        time.Duration `json:"duration"`
	ResultCount     int           `json:"result_count"`
	CacheHit        bool          `json:"cache_hit"`
	QueryComplexity int           `json:"query_complexity"`
	Timestamp       time.Time     `json:"timestamp"`
}

// PerformanceSummary aggregates all stored records.
type PerformanceSummary struct {
	TotalSearches  int           `json:"total_searches"`
	AvgDuration    time.Duration `json:"avg_duration"`
	CacheHitRate   float64       `json:"cache_hit_rate"`
	SlowSearches   int           `json:"slow_searches"`
	SlowSearchRate float64       `json:"slow_search_rate"`
}

// Recommendation is one prioritized, actionable optimization suggestion.
type Recommendation struct {
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

// SearchPerformanceService captures per-search timing and derives
// threshold-based optimization recommendations from the accumulated history.
type SearchPerformanceService struct {
	slowThreshold       time.Duration
	complexityThreshold int

	mu      sync.Mutex
	records []PerformanceRecord
	now     func() time.Time
}

// NewSearchPerformanceService creates a monitor with the given thresholds.
func NewSearchPerformanceService(slowThreshold time.Duration, complexityThreshold int) *SearchPerformanceService {
	return &SearchPerformanceService{
		slowThreshold:       slowThreshold,
		complexityThreshold: complexityThreshold,
		now:                 time.Now,
	}
}

// Record stores one measurement, computing the query's complexity score, and
// logs a warning when a threshold rule fires.
func (s *SearchPerformanceService) Record(id string, input RecordInput) {
	complexity := queryComplexity(input.Query)

	s.mu.Lock()
	s.records = append(s.records, PerformanceRecord{
		ID:              id,
		Duration:        input.Duration,
		ResultCount:     input.ResultCount,
		CacheHit:        input.CacheHit,
		QueryComplexity: complexity,
		Timestamp:       s.now(),
	})
	if len(s.records) > maxPerformanceRecords {
		s.records = s.records[len(s.records)-maxPerformanceRecords:]
	}
	s.mu.Unlock()

	if s.slowThreshold > 0 && input.Duration > s.slowThreshold {
		log.Warn().Str("search", id).Dur("duration", input.Duration).
			Msg("slow search detected")
	}
	if !input.CacheHit && complexity > s.complexityThreshold {
		log.Info().Str("search", id).Int("complexity", complexity).
			Msg("high-complexity search bypassed the cache")
	}
}

// Summary aggregates the stored records.
func (s *SearchPerformanceService) Summary() PerformanceSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := PerformanceSummary{TotalSearches: len(s.records)}
	if len(s.records) == 0 {
		return summary
	}

	var total time.Duration
	hits := 0
	for _, r := range s.records {
		total += r.Duration
		if r.CacheHit {
			hits++
		}
		if s.slowThreshold > 0 && r.Duration > s.slowThreshold {
			summary.SlowSearches++
		}
	}
	summary.AvgDuration = total / time.Duration(len(s.records))
	summary.CacheHitRate = float64(hits) / float64(len(s.records))
	summary.SlowSearchRate = float64(summary.SlowSearches) / float64(len(s.records))
	return summary
}

// Recommendations synthesizes prioritized suggestions from the stored history.
// It is a pure function of the records and safe to call repeatedly.
func (s *SearchPerformanceService) Recommendations() []Recommendation {
	summary := s.Summary()

	s.mu.Lock()
	uncachedComplex := 0
	for _, r := range s.records {
		if !r.CacheHit && r.QueryComplexity > s.complexityThreshold {
			uncachedComplex++
		}
	}
	s.mu.Unlock()

	var recs []Recommendation
	if summary.SlowSearchRate > 0.2 {
		recs = append(recs, Recommendation{
			Priority: "high",
			Type:     "slow_search",
			Message:  "more than a fifth of searches exceed the slow-search threshold; review index and filter shape",
		})
	}
	if uncachedComplex > 0 {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Type:     "caching",
			Message:  "introduce caching for high-complexity queries; several bypassed the cache",
		})
	}
	if summary.TotalSearches >= 20 && summary.CacheHitRate < 0.3 {
		recs = append(recs, Recommendation{
			Priority: "low",
			Type:     "cache_tuning",
			Message:  "cache hit rate is below 30%; consider a larger capacity or longer TTL",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

func priorityRank(p string) int {
	switch p {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

// queryComplexity scores the shape of a query: longer free text and more
// active filter dimensions increase it monotonically.
func queryComplexity(q entities.SearchQuery) int {
	score := len(q.Text) / 10
	score += len(q.Styles)
	score += len(q.Difficulty)
	if q.City != "" {
		score++
	}
	if q.Postcode != "" {
		score++
	}
	if q.SortBy != "" && q.SortBy != entities.SortRelevance {
		score++
	}
	return score
}
