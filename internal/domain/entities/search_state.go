package entities

import "time"

// SearchState is the session-scoped snapshot of the current search: the query
// being displayed, its results, and the loading/error flags the UI renders.
// It is mutated only through the controller so LastUpdated stays accurate.
type SearchState struct {
	Query         SearchQuery               `json:"query"`
	Results       []*Artist                 `json:"results"`
	Loading       bool                      `json:"loading"`
	Error         string                    `json:"error,omitempty"`
	TotalCount    int                       `json:"total_count"`
	Facets        map[string]map[string]int `json:"facets,omitempty"`
	Suggestions   []string                  `json:"suggestions,omitempty"`
	ExecutionTime time.Duration             `json:"execution_time"`
	LastUpdated   time.Time                 `json:"last_updated"`
}

// NewSearchState returns the initial state for a fresh session.
func NewSearchState() *SearchState {
	return &SearchState{
		Query: NewSearchQuery(SearchQuery{}),
	}
}

// Reset returns the state to its initial defaults.
func (s *SearchState) Reset() {
	*s = *NewSearchState()
}
