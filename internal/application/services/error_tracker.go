package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

const topErrorCombos = 5

// ErrorSummary aggregates the tracked errors.
type ErrorSummary struct {
	Total     int            `json:"total"`
	Recent    int            `json:"recent"`
	ByType    map[string]int `json:"by_type"`
	TopErrors []ErrorCombo   `json:"top_errors"`
}

// ErrorCombo is one type:message combination with its occurrence count.
type ErrorCombo struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ErrorTrends reports counts over trailing time windows.
type ErrorTrends struct {
	LastHour int `json:"last_hour"`
	LastDay  int `json:"last_day"`
}

// SearchErrorTracker keeps a bounded ring buffer of tracked errors and
// aggregates occurrences by their type:message composite key.
type SearchErrorTracker struct {
	maxEntries int

	mu      sync.Mutex
	entries []entities.ErrorRecord
	counts  map[string]int
	total   int
	now     func() time.Time
}

// NewSearchErrorTracker creates a tracker bounded to maxEntries records.
func NewSearchErrorTracker(maxEntries int) *SearchErrorTracker {
	if maxEntries <= 0 {
		maxEntries = 50
	}
	return &SearchErrorTracker{
		maxEntries: maxEntries,
		counts:     make(map[string]int),
		now:        time.Now,
	}
}

// Track appends err with its context, dropping the oldest entries once the
// buffer is full.
func (t *SearchErrorTracker) Track(err error, context map[string]interface{}) {
	if err == nil {
		return
	}

	record := entities.ErrorRecord{
		ID:        uuid.NewString(),
		Message:   err.Error(),
		Type:      errorType(err),
		Context:   context,
		Timestamp: t.now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, record)
	if len(t.entries) > t.maxEntries {
		t.entries = t.entries[len(t.entries)-t.maxEntries:]
	}
	t.counts[record.AggregateKey()]++
	t.total++
}

// Recent returns the buffered records in insertion order.
func (t *SearchErrorTracker) Recent() []entities.ErrorRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]entities.ErrorRecord, len(t.entries))
	copy(out, t.entries)
	return out
}

// Summary reports the cumulative count, the buffered count, per-type counts,
// and the most frequent type:message combinations.
func (t *SearchErrorTracker) Summary() ErrorSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	byType := make(map[string]int)
	for _, r := range t.entries {
		byType[r.Type]++
	}

	combos := make([]ErrorCombo, 0, len(t.counts))
	for key, count := range t.counts {
		combos = append(combos, ErrorCombo{Key: key, Count: count})
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Count != combos[j].Count {
			return combos[i].Count > combos[j].Count
		}
		return combos[i].Key < combos[j].Key
	})
	if len(combos) > topErrorCombos {
		combos = combos[:topErrorCombos]
	}

	return ErrorSummary{
		Total:     t.total,
		Recent:    len(t.entries),
		ByType:    byType,
		TopErrors: combos,
	}
}

// Trends counts buffered errors within the trailing hour and day.
func (t *SearchErrorTracker) Trends() ErrorTrends {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	trends := ErrorTrends{}
	for _, r := range t.entries {
		age := now.Sub(r.Timestamp)
		if age <= time.Hour {
			trends.LastHour++
		}
		if age <= 24*time.Hour {
			trends.LastDay++
		}
	}
	return trends
}

func errorType(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return "error"
}
