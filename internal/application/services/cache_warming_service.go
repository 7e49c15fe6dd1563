package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

// CacheWarmingService pre-fills the controller's result cache with the
// searches users run most, so first paint after a deploy is cache-served.
type CacheWarmingService struct {
	controller *SearchController
	queries    []entities.SearchQuery
}

// NewCacheWarmingService creates a warming service over the given queries.
// When none are supplied it falls back to the directory's evergreen searches.
func NewCacheWarmingService(controller *SearchController, queries []entities.SearchQuery) *CacheWarmingService {
	if len(queries) == 0 {
		queries = defaultWarmingQueries()
	}
	return &CacheWarmingService{controller: controller, queries: queries}
}

// WarmCache executes each configured query once so its result lands in the
// cache. Individual failures are logged and skipped; warming is best-effort.
func (s *CacheWarmingService) WarmCache(ctx context.Context) {
	log.Info().Int("queries", len(s.queries)).Msg("starting cache warming")

	warmed := 0
	for _, query := range s.queries {
		if _, err := s.controller.ExecuteSearch(ctx, query); err != nil {
			log.Warn().Str("query", query.CacheKey()).Err(err).Msg("failed to warm query")
			continue
		}
		warmed++
	}

	log.Info().Int("warmed", warmed).Msg("cache warming completed")
}

func defaultWarmingQueries() []entities.SearchQuery {
	popularStyles := []string{"traditional", "realism", "blackwork", "fine_line"}

	queries := []entities.SearchQuery{
		entities.NewSearchQuery(entities.SearchQuery{SortBy: entities.SortPopularity}),
	}
	for _, style := range popularStyles {
		queries = append(queries, entities.NewSearchQuery(entities.SearchQuery{Styles: []string{style}}))
	}
	return queries
}
