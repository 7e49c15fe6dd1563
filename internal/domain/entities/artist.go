package entities

import "time"

// Artist represents a tattoo artist listed in the directory.
type Artist struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	StudioName      string    `json:"studio_name,omitempty"`
	Styles          []string  `json:"styles"`
	Difficulty      []string  `json:"difficulty,omitempty"`
	City            string    `json:"city"`
	Postcode        string    `json:"postcode,omitempty"`
	Location        Location  `json:"location"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	Popularity      int       `json:"popularity"`
	EstablishedYear int       `json:"established_year,omitempty"`
	PortfolioImages []string  `json:"portfolio_images,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Location is a geographic coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchResponse is the payload returned by the remote search index for one
// query: the page of matching artists plus facet counts and suggestions.
type SearchResponse struct {
	Artists     []*Artist                 `json:"artists"`
	TotalCount  int                       `json:"total_count"`
	Facets      map[string]map[string]int `json:"facets,omitempty"`
	Suggestions []string                  `json:"suggestions,omitempty"`
}
