package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/inkatlas/tattoo-directory/internal/adapters/store"
	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/pkg/config"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

// fakeSearcher counts remote calls and serves canned responses per query text.
type fakeSearcher struct {
	mu        sync.Mutex
	calls     int
	err       error
	delay     time.Duration
	delays    map[string]time.Duration
	responses map[string]*entities.SearchResponse
}

func (f *fakeSearcher) Search(ctx context.Context, query entities.SearchQuery) (*entities.SearchResponse, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	delay := f.delay
	if d, ok := f.delays[query.Text]; ok {
		delay = d
	}
	response := f.responses[query.Text]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if response == nil {
		response = &entities.SearchResponse{}
	}
	return response, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		CacheCapacity:       10,
		CacheTTL:            time.Minute,
		DebounceWait:        20 * time.Millisecond,
		HistoryLimit:        10,
		SlowSearchThreshold: time.Second,
		ComplexityThreshold: 5,
		MaxAnalyticsEvents:  100,
		MaxTrackedErrors:    10,
	}
}

func newTestController(searcher *fakeSearcher) *SearchController {
	return NewSearchController(searcher, nil, nil, nil, nil, testSearchConfig())
}

func TestExecuteSearch_UpdatesState(t *testing.T) {
	searcher := &fakeSearcher{responses: map[string]*entities.SearchResponse{
		"dragon": {
			Artists:    []*entities.Artist{{ID: "a1", Name: "Ink Smith"}},
			TotalCount: 1,
		},
	}}
	c := newTestController(searcher)

	response, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "dragon"})

	assert.NoError(t, err)
	assert.Equal(t, 1, response.TotalCount)

	state := c.State()
	assert.Equal(t, "dragon", state.Query.Text)
	assert.Len(t, state.Results, 1)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestExecuteSearch_SecondIdenticalSearchServedFromCache(t *testing.T) {
	searcher := &fakeSearcher{}
	c := newTestController(searcher)
	ctx := context.Background()
	query := entities.SearchQuery{Text: "rose"}

	_, err := c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)
	_, err = c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)

	assert.Equal(t, 1, searcher.callCount())
}

func TestExecuteSearch_ConcurrentIdenticalSearchesDeduplicated(t *testing.T) {
	searcher := &fakeSearcher{delay: 30 * time.Millisecond}
	c := newTestController(searcher)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "rose"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, searcher.callCount())
}

func TestExecuteSearch_StaleCompletionDoesNotOverwriteNewerResults(t *testing.T) {
	searcher := &fakeSearcher{
		delays: map[string]time.Duration{"old school": 80 * time.Millisecond},
		responses: map[string]*entities.SearchResponse{
			"old school": {Artists: []*entities.Artist{{ID: "a1"}}, TotalCount: 1},
			"fine line":  {Artists: []*entities.Artist{{ID: "a2"}}, TotalCount: 1},
		},
	}
	c := newTestController(searcher)

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_, _ = c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "old school"})
	}()

	// Let the slow search reach the remote call before dispatching the next one.
	time.Sleep(20 * time.Millisecond)

	_, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "fine line"})
	assert.NoError(t, err)

	// The slow completion lands after the newer one and must be discarded.
	<-slowDone

	state := c.State()
	assert.Equal(t, "fine line", state.Query.Text)
	if assert.Len(t, state.Results, 1) {
		assert.Equal(t, "a2", state.Results[0].ID)
	}
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestExecuteSearch_FailureKeepsPreviousResults(t *testing.T) {
	searcher := &fakeSearcher{responses: map[string]*entities.SearchResponse{
		"rose": {Artists: []*entities.Artist{{ID: "a1"}}, TotalCount: 1},
	}}
	c := newTestController(searcher)
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)

	searcher.mu.Lock()
	searcher.err = apperrors.NewSearchError("index unreachable", nil)
	searcher.mu.Unlock()

	_, err = c.ExecuteSearch(ctx, entities.SearchQuery{Text: "dragon"})
	assert.Error(t, err)

	state := c.State()
	assert.NotEmpty(t, state.Error)
	assert.False(t, state.Loading)
	// The rose results are still on screen.
	assert.Len(t, state.Results, 1)
}

func TestExecuteSearch_NotifiesListeners(t *testing.T) {
	c := newTestController(&fakeSearcher{})

	var notifications atomic.Int32
	unsubscribe := c.AddListener(func() { notifications.Add(1) })

	_, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)

	// One notification entering loading, one applying the response.
	assert.Equal(t, int32(2), notifications.Load())

	unsubscribe()
	_, err = c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "dragon"})
	assert.NoError(t, err)
	assert.Equal(t, int32(2), notifications.Load())
}

func TestExecuteSearch_CacheHitSkipsLoadingTransition(t *testing.T) {
	c := newTestController(&fakeSearcher{})
	ctx := context.Background()
	query := entities.SearchQuery{Text: "rose"}

	_, err := c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)

	sawLoading := false
	c.AddListener(func() {
		if c.State().Loading {
			sawLoading = true
		}
	})

	_, err = c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)
	assert.False(t, sawLoading)
}

func TestApplyFilters_MergesAndResetsPage(t *testing.T) {
	c := newTestController(&fakeSearcher{})
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, entities.SearchQuery{Text: "rose", Page: 4})
	assert.NoError(t, err)

	city := "Leeds"
	_, err = c.ApplyFilters(ctx, FilterUpdate{City: &city, Styles: []string{"realism"}})
	assert.NoError(t, err)

	state := c.State()
	assert.Equal(t, "rose", state.Query.Text) // free text preserved
	assert.Equal(t, "Leeds", state.Query.City)
	assert.Equal(t, []string{"realism"}, state.Query.Styles)
	assert.Equal(t, 1, state.Query.Page)
}

func TestClearFilters_KeepsOnlyText(t *testing.T) {
	c := newTestController(&fakeSearcher{})
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, entities.SearchQuery{
		Text:   "rose",
		City:   "Leeds",
		Styles: []string{"realism"},
		SortBy: entities.SortRating,
	})
	assert.NoError(t, err)

	_, err = c.ClearFilters(ctx)
	assert.NoError(t, err)

	state := c.State()
	assert.Equal(t, "rose", state.Query.Text)
	assert.Empty(t, state.Query.City)
	assert.Empty(t, state.Query.Styles)
	assert.Equal(t, entities.SortRelevance, state.Query.SortBy)
}

func TestDebouncedSearch_BurstCollapsesToOneSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	c := newTestController(searcher)

	c.DebouncedSearch(entities.SearchQuery{Text: "r"})
	c.DebouncedSearch(entities.SearchQuery{Text: "ro"})
	c.DebouncedSearch(entities.SearchQuery{Text: "rose"})

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, searcher.callCount())
	assert.Equal(t, "rose", c.State().Query.Text)
}

func TestCancelPendingSearch_SuppressesDebouncedSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	c := newTestController(searcher)

	c.DebouncedSearch(entities.SearchQuery{Text: "rose"})
	c.CancelPendingSearch()

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 0, searcher.callCount())
}

func TestReset_RestoresInitialState(t *testing.T) {
	c := newTestController(&fakeSearcher{responses: map[string]*entities.SearchResponse{
		"rose": {Artists: []*entities.Artist{{ID: "a1"}}, TotalCount: 1},
	}})

	_, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)

	notified := false
	c.AddListener(func() { notified = true })

	c.Reset()

	state := c.State()
	assert.Empty(t, state.Results)
	assert.Empty(t, state.Query.Text)
	assert.True(t, notified)
}

func TestExecuteSearch_SavesFilteredQueryToHistory(t *testing.T) {
	kv := store.NewMemoryStore()
	history := NewSearchHistoryService(kv, 10)
	c := NewSearchController(&fakeSearcher{}, history, nil, nil, nil, testSearchConfig())
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)
	_, err = c.ExecuteSearch(ctx, entities.SearchQuery{}) // no filters, not saved
	assert.NoError(t, err)

	saved := history.History(ctx)
	assert.Len(t, saved, 1)
	assert.Equal(t, "rose", saved[0].Text)
}

func TestExecuteSearch_RecordsOutcomeCollaborators(t *testing.T) {
	analytics := NewSearchAnalyticsService(store.NewMemoryStore(), 100, time.Second)
	performance := NewSearchPerformanceService(time.Second, 5)
	tracker := NewSearchErrorTracker(10)
	searcher := &fakeSearcher{}
	c := NewSearchController(searcher, nil, analytics, performance, tracker, testSearchConfig())
	ctx := context.Background()

	_, err := c.ExecuteSearch(ctx, entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)

	assert.Equal(t, 1, performance.Summary().TotalSearches)
	assert.Equal(t, 1, analytics.Summary().Session.SearchCount)
	assert.Empty(t, tracker.Recent())

	searcher.mu.Lock()
	searcher.err = apperrors.NewSearchError("index unreachable", nil)
	searcher.mu.Unlock()

	_, err = c.ExecuteSearch(ctx, entities.SearchQuery{Text: "dragon"})
	assert.Error(t, err)
	assert.Len(t, tracker.Recent(), 1)
	assert.Equal(t, 1, analytics.Summary().Session.FailureCount)
}

func TestSetOutcomeHook_ReceivesCacheOutcome(t *testing.T) {
	c := newTestController(&fakeSearcher{})
	ctx := context.Background()

	var mu sync.Mutex
	var hits []bool
	c.SetOutcomeHook(func(_ time.Duration, cacheHit bool) {
		mu.Lock()
		hits = append(hits, cacheHit)
		mu.Unlock()
	})

	query := entities.SearchQuery{Text: "rose"}
	_, err := c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)
	_, err = c.ExecuteSearch(ctx, query)
	assert.NoError(t, err)

	assert.Equal(t, []bool{false, true}, hits)
}

func TestPendingRequests_TracksInFlightSearches(t *testing.T) {
	searcher := &fakeSearcher{delay: 50 * time.Millisecond}
	c := newTestController(searcher)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "rose"})
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, c.PendingRequests())

	<-done
	assert.Equal(t, 0, c.PendingRequests())
}

func TestCacheStats_ReflectsConfiguration(t *testing.T) {
	c := newTestController(&fakeSearcher{})

	stats := c.CacheStats()
	assert.Equal(t, 10, stats.Capacity)
	assert.Equal(t, time.Minute, stats.TTL)
	assert.Equal(t, 0, stats.Size)

	_, err := c.ExecuteSearch(context.Background(), entities.SearchQuery{Text: "rose"})
	assert.NoError(t, err)
	assert.Equal(t, 1, c.CacheStats().Size)
}
