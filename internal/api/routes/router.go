package routes

import (
	"net/http"

	"github.com/inkatlas/tattoo-directory/internal/api/handlers"
	"github.com/inkatlas/tattoo-directory/internal/api/middleware"
	"github.com/inkatlas/tattoo-directory/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler
	abtestHandler *handlers.ABTestHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	abtestHandler *handlers.ABTestHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		searchHandler:  searchHandler,
		abtestHandler:  abtestHandler,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /api/artists/search", r.searchHandler.SearchArtists)
	r.mux.HandleFunc("GET /api/search/state", r.searchHandler.SearchState)
	r.mux.HandleFunc("GET /api/search/history", r.searchHandler.GetHistory)
	r.mux.HandleFunc("DELETE /api/search/history", r.searchHandler.ClearHistory)
	r.mux.HandleFunc("GET /api/search/analytics", r.searchHandler.GetAnalytics)
	r.mux.HandleFunc("GET /api/search/performance", r.searchHandler.GetPerformance)
	r.mux.HandleFunc("GET /api/search/errors", r.searchHandler.GetErrors)

	if r.abtestHandler != nil {
		r.mux.HandleFunc("POST /api/abtests", r.abtestHandler.CreateTest)
		r.mux.HandleFunc("GET /api/abtests/{id}/variant", r.abtestHandler.GetVariant)
		r.mux.HandleFunc("POST /api/abtests/{id}/events", r.abtestHandler.TrackEvent)
		r.mux.HandleFunc("GET /api/abtests/{id}/results", r.abtestHandler.GetResults)
	}

	var handler http.Handler = r.mux
	if r.metrics != nil {
		handler = middleware.Observability(r.metrics)(handler)
	}
	handler = middleware.Logging(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
