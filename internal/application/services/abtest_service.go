package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

const abtestStoreKey = "search:abtests"

// TestConfig describes an experiment at creation time.
type TestConfig struct {
	Name         string
	Variants     []entities.Variant
	TrafficSplit float64
	Metrics      []string
}

type abtestSnapshot struct {
	Tests       map[string]*entities.ABTest                   `json:"tests"`
	Assignments map[string]map[string]string                  `json:"assignments"`
	Results     map[string]map[string]*entities.VariantResult `json:"results"`
}

// SearchABTestService registers experiments, assigns users to variants
// deterministically, and accumulates per-variant metrics. All state persists
// through the key-value store so a fresh instance recovers existing tests.
type SearchABTestService struct {
	store providers.KVStore

	mu          sync.Mutex
	tests       map[string]*entities.ABTest
	assignments map[string]map[string]string // testID -> userID -> variantID
	results     map[string]map[string]*entities.VariantResult
	now         func() time.Time
}

// NewSearchABTestService creates a framework instance, restoring any
// previously persisted experiment state.
func NewSearchABTestService(ctx context.Context, store providers.KVStore) *SearchABTestService {
	s := &SearchABTestService{
		store:       store,
		tests:       make(map[string]*entities.ABTest),
		assignments: make(map[string]map[string]string),
		results:     make(map[string]map[string]*entities.VariantResult),
		now:         time.Now,
	}
	s.load(ctx)
	return s
}

// CreateTest registers an experiment, active by default.
func (s *SearchABTestService) CreateTest(ctx context.Context, id string, cfg TestConfig) (*entities.ABTest, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("test id is required")
	}
	if len(cfg.Variants) == 0 {
		return nil, apperrors.NewValidationError("a test needs at least one variant")
	}

	test := &entities.ABTest{
		ID:           id,
		Name:         cfg.Name,
		Variants:     cfg.Variants,
		TrafficSplit: cfg.TrafficSplit,
		Active:       true,
		Metrics:      cfg.Metrics,
		CreatedAt:    s.now(),
	}

	s.mu.Lock()
	s.tests[id] = test
	if s.results[id] == nil {
		s.results[id] = make(map[string]*entities.VariantResult)
		for _, v := range cfg.Variants {
			s.results[id][v.ID] = &entities.VariantResult{
				Metrics: make(map[string]float64),
				Users:   make(map[string]bool),
			}
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
	return test, nil
}

// UserVariant returns the variant assigned to userID for testID. An unknown
// test yields a zero variant and an inactive test always yields control. The
// first computation draws deterministically from a hash of (testID, userID)
// against the traffic split; the result is persisted so later split changes
// never reclassify an already-assigned user.
func (s *SearchABTestService) UserVariant(ctx context.Context, testID, userID string) entities.Variant {
	s.mu.Lock()
	test, ok := s.tests[testID]
	if !ok {
		s.mu.Unlock()
		return entities.Variant{}
	}
	if !test.Active {
		s.mu.Unlock()
		return test.ControlVariant()
	}

	if variantID, ok := s.assignments[testID][userID]; ok {
		variant := s.variantByID(test, variantID)
		s.mu.Unlock()
		return variant
	}

	variant := drawVariant(test, userID)
	if s.assignments[testID] == nil {
		s.assignments[testID] = make(map[string]string)
	}
	s.assignments[testID][userID] = variant.ID
	s.variantResult(testID, variant.ID).Users[userID] = true
	s.mu.Unlock()

	s.persist(ctx)
	return variant
}

// TrackEvent records the event under the user's assigned variant and updates
// that variant's derived metrics.
func (s *SearchABTestService) TrackEvent(ctx context.Context, testID, eventType string, payload map[string]interface{}, userID string) {
	variant := s.UserVariant(ctx, testID, userID)
	if variant.ID == "" {
		return
	}

	s.mu.Lock()
	result := s.variantResult(testID, variant.ID)
	result.Events = append(result.Events, entities.ABTestEvent{
		Type:      eventType,
		Payload:   payload,
		UserID:    userID,
		Timestamp: s.now(),
	})
	if eventType == "conversion" {
		result.Metrics["conversions"]++
		if users := len(result.Users); users > 0 {
			result.Metrics["conversion_rate"] = result.Metrics["conversions"] / float64(users)
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// TestResults reports per-variant events, metrics, assigned-user totals, and
// the test's running duration.
func (s *SearchABTestService) TestResults(testID string) (*entities.ABTestResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	test, ok := s.tests[testID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("unknown test: %s", testID))
	}

	results := &entities.ABTestResults{
		TestID:        testID,
		Name:          test.Name,
		Variants:      s.results[testID],
		AssignedUsers: len(s.assignments[testID]),
		Duration:      s.now().Sub(test.CreatedAt),
	}
	return results, nil
}

// drawVariant maps a hash of (testID, userID) into [0,100) and compares it to
// the traffic-split boundary: below the boundary the treatment arms share the
// bucket evenly, at or above it the user stays on control.
func drawVariant(test *entities.ABTest, userID string) entities.Variant {
	if len(test.Variants) < 2 {
		return test.ControlVariant()
	}

	bucket := float64(xxhash.Sum64String(test.ID+":"+userID)%10000) / 100.0
	if bucket >= test.TrafficSplit {
		return test.ControlVariant()
	}

	treatments := test.Variants[1:]
	width := test.TrafficSplit / float64(len(treatments))
	idx := int(bucket / width)
	if idx >= len(treatments) {
		idx = len(treatments) - 1
	}
	return treatments[idx]
}

func (s *SearchABTestService) variantByID(test *entities.ABTest, variantID string) entities.Variant {
	for _, v := range test.Variants {
		if v.ID == variantID {
			return v
		}
	}
	return test.ControlVariant()
}

// variantResult returns the accumulator for a variant, creating it lazily.
// Callers must hold s.mu.
func (s *SearchABTestService) variantResult(testID, variantID string) *entities.VariantResult {
	if s.results[testID] == nil {
		s.results[testID] = make(map[string]*entities.VariantResult)
	}
	result := s.results[testID][variantID]
	if result == nil {
		result = &entities.VariantResult{
			Metrics: make(map[string]float64),
			Users:   make(map[string]bool),
		}
		s.results[testID][variantID] = result
	}
	return result
}

func (s *SearchABTestService) persist(ctx context.Context) {
	s.mu.Lock()
	snapshot := abtestSnapshot{
		Tests:       s.tests,
		Assignments: s.assignments,
		Results:     s.results,
	}
	payload, err := json.Marshal(snapshot)
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("failed to serialize experiment state")
		return
	}
	if err := s.store.Set(ctx, abtestStoreKey, string(payload)); err != nil {
		log.Warn().Err(err).Msg("failed to persist experiment state")
	}
}

func (s *SearchABTestService) load(ctx context.Context) {
	raw, err := s.store.Get(ctx, abtestStoreKey)
	if err != nil {
		return
	}

	var snapshot abtestSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt experiment state")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.Tests != nil {
		s.tests = snapshot.Tests
	}
	if snapshot.Assignments != nil {
		s.assignments = snapshot.Assignments
	}
	if snapshot.Results != nil {
		s.results = snapshot.Results
	}
}
