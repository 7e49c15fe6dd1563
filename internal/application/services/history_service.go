package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
)

const historyStoreKey = "search:history"

// SearchHistoryService persists a bounded, most-recent-first list of past
// queries. History is a convenience feature: store faults are logged and
// swallowed, never surfaced to the caller.
type SearchHistoryService struct {
	store providers.KVStore
	limit int
}

// NewSearchHistoryService creates a history service bounded to limit entries.
func NewSearchHistoryService(store providers.KVStore, limit int) *SearchHistoryService {
	if limit <= 0 {
		limit = 10
	}
	return &SearchHistoryService{store: store, limit: limit}
}

// Save records the query at the head of the history list. Queries without
// filters are never recorded; a repeated query moves to the head instead of
// duplicating.
func (s *SearchHistoryService) Save(ctx context.Context, query entities.SearchQuery) {
	if !query.HasFilters() {
		return
	}

	history := s.History(ctx)

	key := query.CacheKey()
	deduped := make([]entities.SearchQuery, 0, len(history)+1)
	deduped = append(deduped, query)
	for _, prev := range history {
		if prev.CacheKey() == key {
			continue
		}
		deduped = append(deduped, prev)
	}
	if len(deduped) > s.limit {
		deduped = deduped[:s.limit]
	}

	payload, err := json.Marshal(deduped)
	if err != nil {
		log.Warn().Err(err).Msg("failed to serialize search history")
		return
	}
	if err := s.store.Set(ctx, historyStoreKey, string(payload)); err != nil {
		log.Warn().Err(err).Msg("failed to persist search history")
	}
}

// History returns the stored list, most recent first. A missing or corrupt
// store value degrades to an empty list.
func (s *SearchHistoryService) History(ctx context.Context) []entities.SearchQuery {
	raw, err := s.store.Get(ctx, historyStoreKey)
	if err != nil {
		return nil
	}

	var history []entities.SearchQuery
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		log.Warn().Err(err).Msg("discarding corrupt search history")
		return nil
	}
	return history
}

// Clear removes the stored list.
func (s *SearchHistoryService) Clear(ctx context.Context) {
	if err := s.store.Delete(ctx, historyStoreKey); err != nil {
		log.Warn().Err(err).Msg("failed to clear search history")
	}
}
