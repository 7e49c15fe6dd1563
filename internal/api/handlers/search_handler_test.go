package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkatlas/tattoo-directory/internal/adapters/store"
	"github.com/inkatlas/tattoo-directory/internal/api/handlers"
	"github.com/inkatlas/tattoo-directory/internal/application/services"
	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/pkg/config"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

// stubSearcher serves a fixed response or error.
type stubSearcher struct {
	response *entities.SearchResponse
	err      error
}

func (s *stubSearcher) Search(ctx context.Context, query entities.SearchQuery) (*entities.SearchResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return &entities.SearchResponse{}, nil
}

type fixture struct {
	handler *handlers.SearchHandler
	history *services.SearchHistoryService
}

func newFixture(searcher *stubSearcher) *fixture {
	cfg := config.SearchConfig{
		CacheCapacity:       10,
		CacheTTL:            time.Minute,
		DebounceWait:        10 * time.Millisecond,
		HistoryLimit:        10,
		SlowSearchThreshold: time.Second,
		ComplexityThreshold: 5,
		MaxAnalyticsEvents:  100,
		MaxTrackedErrors:    10,
	}

	kv := store.NewMemoryStore()
	history := services.NewSearchHistoryService(kv, cfg.HistoryLimit)
	analytics := services.NewSearchAnalyticsService(kv, cfg.MaxAnalyticsEvents, cfg.SlowSearchThreshold)
	performance := services.NewSearchPerformanceService(cfg.SlowSearchThreshold, cfg.ComplexityThreshold)
	tracker := services.NewSearchErrorTracker(cfg.MaxTrackedErrors)
	controller := services.NewSearchController(searcher, history, analytics, performance, tracker, cfg)

	return &fixture{
		handler: handlers.NewSearchHandler(controller, history, analytics, performance, tracker),
		history: history,
	}
}

func TestSearchArtists_ReturnsResults(t *testing.T) {
	f := newFixture(&stubSearcher{response: &entities.SearchResponse{
		Artists:    []*entities.Artist{{ID: "a1", Name: "Ink Smith"}},
		TotalCount: 1,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/artists/search?query=dragon&styles=realism", nil)
	rec := httptest.NewRecorder()

	f.handler.SearchArtists(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total_count"])
	assert.Len(t, body["artists"], 1)
}

func TestSearchArtists_SearchFailureMapsToBadGateway(t *testing.T) {
	f := newFixture(&stubSearcher{err: apperrors.NewSearchError("index unreachable", nil)})

	req := httptest.NewRequest(http.MethodGet, "/api/artists/search?query=dragon", nil)
	rec := httptest.NewRecorder()

	f.handler.SearchArtists(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchState_ReturnsSnapshot(t *testing.T) {
	f := newFixture(&stubSearcher{})

	// Run one search so the state has a query in it.
	searchReq := httptest.NewRequest(http.MethodGet, "/api/artists/search?query=rose", nil)
	f.handler.SearchArtists(httptest.NewRecorder(), searchReq)

	req := httptest.NewRequest(http.MethodGet, "/api/search/state", nil)
	rec := httptest.NewRecorder()

	f.handler.SearchState(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var state entities.SearchState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "rose", state.Query.Text)
	assert.False(t, state.Loading)
}

func TestGetHistory_EmptyHistoryIsAnEmptyList(t *testing.T) {
	f := newFixture(&stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/history", nil)
	rec := httptest.NewRecorder()

	f.handler.GetHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history": [], "count": 0}`, rec.Body.String())
}

func TestClearHistory_ReturnsNoContent(t *testing.T) {
	f := newFixture(&stubSearcher{})
	f.history.Save(context.Background(), entities.NewSearchQuery(entities.SearchQuery{Text: "rose"}))

	req := httptest.NewRequest(http.MethodDelete, "/api/search/history", nil)
	rec := httptest.NewRecorder()

	f.handler.ClearHistory(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.history.History(context.Background()))
}

func TestGetAnalytics_ReturnsSummary(t *testing.T) {
	f := newFixture(&stubSearcher{})

	searchReq := httptest.NewRequest(http.MethodGet, "/api/artists/search?query=rose", nil)
	f.handler.SearchArtists(httptest.NewRecorder(), searchReq)

	req := httptest.NewRequest(http.MethodGet, "/api/search/analytics", nil)
	rec := httptest.NewRecorder()

	f.handler.GetAnalytics(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotZero(t, body["total_events"])
}

func TestGetPerformance_IncludesCacheStats(t *testing.T) {
	f := newFixture(&stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/search/performance", nil)
	rec := httptest.NewRecorder()

	f.handler.GetPerformance(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "recommendations")
	assert.Contains(t, body, "cache")
}

func TestGetErrors_ReturnsSummaryAndTrends(t *testing.T) {
	f := newFixture(&stubSearcher{err: apperrors.NewSearchError("index unreachable", nil)})

	searchReq := httptest.NewRequest(http.MethodGet, "/api/artists/search?query=rose", nil)
	f.handler.SearchArtists(httptest.NewRecorder(), searchReq)

	req := httptest.NewRequest(http.MethodGet, "/api/search/errors", nil)
	rec := httptest.NewRecorder()

	f.handler.GetErrors(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
		Trends struct {
			LastHour int `json:"last_hour"`
		} `json:"trends"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Summary.Total)
	assert.Equal(t, 1, body.Trends.LastHour)
}
