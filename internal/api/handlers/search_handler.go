package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/inkatlas/tattoo-directory/internal/application/services"
	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/infrastructure/observability"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

// SearchHandler exposes the search orchestration engine over HTTP
type SearchHandler struct {
	controller  *services.SearchController
	history     *services.SearchHistoryService
	analytics   *services.SearchAnalyticsService
	performance *services.SearchPerformanceService
	errors      *services.SearchErrorTracker
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(
	controller *services.SearchController,
	history *services.SearchHistoryService,
	analytics *services.SearchAnalyticsService,
	performance *services.SearchPerformanceService,
	errorTracker *services.SearchErrorTracker,
) *SearchHandler {
	return &SearchHandler{
		controller:  controller,
		history:     history,
		analytics:   analytics,
		performance: performance,
		errors:      errorTracker,
	}
}

// SearchArtists handles GET /api/artists/search
func (h *SearchHandler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	query := entities.QueryFromParams(r.URL.Query())

	response, err := h.controller.ExecuteSearch(r.Context(), query)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Warn().
			Err(err).
			Str("query", query.Text).
			Msg("search request failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"artists":     response.Artists,
		"total_count": response.TotalCount,
		"facets":      response.Facets,
		"suggestions": response.Suggestions,
		"query":       query,
	})
}

// SearchState handles GET /api/search/state
func (h *SearchHandler) SearchState(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.controller.State())
}

// GetHistory handles GET /api/search/history
func (h *SearchHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.history.History(r.Context())
	if history == nil {
		history = []entities.SearchQuery{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

// ClearHistory handles DELETE /api/search/history
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.history.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetAnalytics handles GET /api/search/analytics
func (h *SearchHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.analytics.Summary())
}

// GetPerformance handles GET /api/search/performance
func (h *SearchHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"summary":         h.performance.Summary(),
		"recommendations": h.performance.Recommendations(),
		"cache":           h.controller.CacheStats(),
	})
}

// GetErrors handles GET /api/search/errors
func (h *SearchHandler) GetErrors(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"summary": h.errors.Summary(),
		"trends":  h.errors.Trends(),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeInternal, apperrors.ErrorTypeStorage:
			// fall through, internal details stay out of responses
		default:
			respondWithError(w, appErr.HTTPStatus(), appErr.Message)
			return
		}
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
