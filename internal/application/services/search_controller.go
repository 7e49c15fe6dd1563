package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	"github.com/inkatlas/tattoo-directory/pkg/cache"
	"github.com/inkatlas/tattoo-directory/pkg/config"
	"github.com/inkatlas/tattoo-directory/pkg/debounce"
	"github.com/inkatlas/tattoo-directory/pkg/dedup"
)

// FilterUpdate is a partial change to the filter fields of the current query.
// Nil fields are left untouched; a non-nil empty slice clears a tag set.
type FilterUpdate struct {
	Text       *string
	Styles     []string
	City       *string
	Postcode   *string
	Difficulty []string
	SortBy     *entities.SortMode
	PageSize   *int
}

type controllerListener struct {
	id int
	fn func()
}

// SearchController is the orchestration root of the search engine. It owns the
// session state, serves repeated queries from a bounded TTL cache, collapses
// concurrent identical searches into one remote call, and feeds the history,
// analytics, performance, and error-tracking collaborators best-effort: no
// failure in those subsystems may prevent a search from completing.
type SearchController struct {
	searcher     providers.ArtistSearchProvider
	history      *SearchHistoryService
	analytics    *SearchAnalyticsService
	performance  *SearchPerformanceService
	errorTracker *SearchErrorTracker

	cache     *cache.Cache[*entities.SearchResponse]
	dedup     *dedup.Deduplicator[*entities.SearchResponse]
	debouncer *debounce.Debouncer[entities.SearchQuery]

	onOutcome func(duration time.Duration, cacheHit bool)

	mu             sync.Mutex
	state          *entities.SearchState
	listeners      []controllerListener
	nextListenerID int
	nextSeq        uint64
	appliedSeq     uint64
}

// NewSearchController creates a controller around the given remote searcher.
// The history, analytics, performance, and error-tracking collaborators may be
// nil; the controller degrades to plain search orchestration without them.
func NewSearchController(
	searcher providers.ArtistSearchProvider,
	history *SearchHistoryService,
	analytics *SearchAnalyticsService,
	performance *SearchPerformanceService,
	errorTracker *SearchErrorTracker,
	cfg config.SearchConfig,
) *SearchController {
	c := &SearchController{
		searcher:     searcher,
		history:      history,
		analytics:    analytics,
		performance:  performance,
		errorTracker: errorTracker,
		cache:        cache.New[*entities.SearchResponse](cfg.CacheCapacity, cfg.CacheTTL),
		dedup:        dedup.New[*entities.SearchResponse](),
		state:        entities.NewSearchState(),
	}
	c.debouncer = debounce.New(cfg.DebounceWait, func(q entities.SearchQuery) {
		if _, err := c.ExecuteSearch(context.Background(), q); err != nil {
			log.Debug().Err(err).Msg("debounced search failed")
		}
	})
	return c
}

// SetOutcomeHook registers fn to be called after every successful search with
// its duration and whether the cache served it. Used to feed search metrics
// without coupling the controller to an exporter.
func (c *SearchController) SetOutcomeHook(fn func(duration time.Duration, cacheHit bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOutcome = fn
}

// ExecuteSearch runs one search. A live cache entry is served without touching
// the network; otherwise the remote call is deduplicated by cache key, so two
// concurrent identical searches produce exactly one outbound request and share
// its outcome. On failure the previous results stay visible, the state error
// is set, and the failure is returned to the caller.
func (c *SearchController) ExecuteSearch(ctx context.Context, query entities.SearchQuery) (*entities.SearchResponse, error) {
	query = entities.NewSearchQuery(query)
	key := query.CacheKey()

	c.trackEvent(entities.EventSearchInitiated, map[string]interface{}{
		"query": key,
	})

	if response, ok := c.cache.Get(key); ok {
		c.applyResponse(c.nextSequence(), query, response, 0)
		c.recordOutcome(query, response, 0, true)
		return response, nil
	}

	seq := c.beginRequest(query)
	start := time.Now()

	response, err := c.dedup.Execute(key, func() (*entities.SearchResponse, error) {
		return c.searcher.Search(ctx, query)
	})
	duration := time.Since(start)

	if err != nil {
		c.applyFailure(seq, err)
		c.trackFailure(query, err, duration)
		return nil, err
	}

	c.cache.Set(key, response)
	c.applyResponse(seq, query, response, duration)
	c.recordOutcome(query, response, duration, false)

	if c.history != nil {
		c.history.Save(ctx, query)
	}

	return response, nil
}

// DebouncedSearch schedules query behind the configured quiet period. A burst
// of calls collapses into a single ExecuteSearch with the last query.
func (c *SearchController) DebouncedSearch(query entities.SearchQuery) {
	c.debouncer.Call(query)
}

// CancelPendingSearch discards a debounced search that has not fired yet.
func (c *SearchController) CancelPendingSearch() {
	c.debouncer.Cancel()
}

// ApplyFilters merges the update into the current query's filter fields,
// resets the page to 1, and re-executes. Free text is preserved unless the
// update overrides it explicitly.
func (c *SearchController) ApplyFilters(ctx context.Context, update FilterUpdate) (*entities.SearchResponse, error) {
	c.mu.Lock()
	query := c.state.Query
	if update.Text != nil {
		query.Text = *update.Text
	}
	if update.Styles != nil {
		query.Styles = update.Styles
	}
	if update.City != nil {
		query.City = *update.City
	}
	if update.Postcode != nil {
		query.Postcode = *update.Postcode
	}
	if update.Difficulty != nil {
		query.Difficulty = update.Difficulty
	}
	if update.SortBy != nil {
		query.SortBy = *update.SortBy
	}
	if update.PageSize != nil {
		query.PageSize = *update.PageSize
	}
	query.Page = 1
	c.mu.Unlock()

	c.trackEvent(entities.EventFilterChanged, map[string]interface{}{
		"query": query.CacheKey(),
	})

	return c.ExecuteSearch(ctx, entities.NewSearchQuery(query))
}

// ClearFilters resets every filter field except the free text and re-executes.
func (c *SearchController) ClearFilters(ctx context.Context) (*entities.SearchResponse, error) {
	c.mu.Lock()
	query := entities.NewSearchQuery(entities.SearchQuery{Text: c.state.Query.Text})
	c.mu.Unlock()

	c.trackEvent(entities.EventFilterChanged, map[string]interface{}{
		"query":   query.CacheKey(),
		"cleared": true,
	})

	return c.ExecuteSearch(ctx, query)
}

// AddListener registers fn for synchronous notification after every state
// mutation, in registration order. A listener added during a notification
// round is not invoked until the next round. The returned function removes
// the registration.
func (c *SearchController) AddListener(fn func()) func() {
	c.mu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners = append(c.listeners, controllerListener{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// State returns a snapshot of the current search state.
func (c *SearchController) State() entities.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.state
}

// Reset restores the state to its initial value and notifies listeners.
func (c *SearchController) Reset() {
	c.mu.Lock()
	c.state.Reset()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners)
}

// CacheStats exposes the result cache shape for observability.
func (c *SearchController) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// PendingRequests reports how many deduplicated remote calls are in flight.
func (c *SearchController) PendingRequests() int {
	return c.dedup.PendingCount()
}

func (c *SearchController) nextSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

// beginRequest flips the state to loading, clears the previous error, and
// hands out the sequence number used to fence stale completions.
func (c *SearchController) beginRequest(query entities.SearchQuery) uint64 {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.state.Query = query
	c.state.Loading = true
	c.state.Error = ""
	c.state.LastUpdated = time.Now()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners)
	return seq
}

// applyResponse writes a completed search into the state unless a later
// request has already been applied; out-of-order completions from slower
// earlier searches must not overwrite fresher results.
func (c *SearchController) applyResponse(seq uint64, query entities.SearchQuery, response *entities.SearchResponse, duration time.Duration) {
	c.mu.Lock()
	if seq < c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.appliedSeq = seq
	c.state.Query = query
	c.state.Results = response.Artists
	c.state.TotalCount = response.TotalCount
	c.state.Facets = response.Facets
	c.state.Suggestions = response.Suggestions
	c.state.ExecutionTime = duration
	c.state.Loading = false
	c.state.Error = ""
	c.state.LastUpdated = time.Now()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners)
}

// applyFailure surfaces the error in the state while leaving the previously
// displayed results untouched.
func (c *SearchController) applyFailure(seq uint64, err error) {
	c.mu.Lock()
	if seq < c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.appliedSeq = seq
	c.state.Loading = false
	c.state.Error = err.Error()
	c.state.LastUpdated = time.Now()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notify(listeners)
}

func (c *SearchController) recordOutcome(query entities.SearchQuery, response *entities.SearchResponse, duration time.Duration, cacheHit bool) {
	c.mu.Lock()
	hook := c.onOutcome
	c.mu.Unlock()
	if hook != nil {
		hook(duration, cacheHit)
	}

	if c.performance != nil {
		c.performance.Record(query.CacheKey(), RecordInput{
			Duration:    duration,
			ResultCount: response.TotalCount,
			CacheHit:    cacheHit,
			Query:       query,
		})
	}

	c.trackEvent(entities.EventSearchCompleted, map[string]interface{}{
		"query":        query.CacheKey(),
		"result_count": response.TotalCount,
		"duration":     duration,
		"cache_hit":    cacheHit,
	})
	if response.TotalCount == 0 {
		c.trackEvent(entities.EventNoResults, map[string]interface{}{
			"query": query.CacheKey(),
		})
	}
}

func (c *SearchController) trackFailure(query entities.SearchQuery, err error, duration time.Duration) {
	if c.errorTracker != nil {
		c.errorTracker.Track(err, map[string]interface{}{
			"query": query.CacheKey(),
		})
	}
	c.trackEvent(entities.EventSearchFailed, map[string]interface{}{
		"query":    query.CacheKey(),
		"error":    err.Error(),
		"duration": duration,
	})
}

func (c *SearchController) trackEvent(eventType entities.SearchEventType, data map[string]interface{}) {
	if c.analytics == nil {
		return
	}
	c.analytics.TrackEvent(eventType, data)
}

func (c *SearchController) snapshotListeners() []controllerListener {
	out := make([]controllerListener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func notify(listeners []controllerListener) {
	for _, l := range listeners {
		l.fn()
	}
}
