package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

func TestQueryText_EmptyBecomesWildcard(t *testing.T) {
	assert.Equal(t, "*", queryText(entities.SearchQuery{}))
	assert.Equal(t, "dragon", queryText(entities.SearchQuery{Text: "dragon"}))
}

func TestSortClause_MapsEveryMode(t *testing.T) {
	assert.Equal(t, "popularity:desc", sortClause(entities.SortPopularity))
	assert.Equal(t, "name:asc", sortClause(entities.SortName))
	assert.Equal(t, "established_year:asc", sortClause(entities.SortEstablished))
	assert.Equal(t, "rating:desc", sortClause(entities.SortRating))
	assert.Equal(t, "_text_match:desc,popularity:desc", sortClause(entities.SortRelevance))

	// Distance without a geocoded anchor degrades to popularity.
	assert.Equal(t, "popularity:desc", sortClause(entities.SortDistance))
}

type stubGeocoder struct {
	location entities.Location
	err      error
}

func (s stubGeocoder) Geocode(ctx context.Context, location string) (entities.Location, error) {
	return s.location, s.err
}

func TestSortFor_DistanceUsesGeocodedAnchor(t *testing.T) {
	a := NewTypesenseAdapterWithGeocoder(nil, stubGeocoder{
		location: entities.Location{Latitude: 53.8008, Longitude: -1.5491},
	})

	clause := a.sortFor(context.Background(), entities.SearchQuery{
		SortBy:   entities.SortDistance,
		Postcode: "LS1 4DT",
	})

	assert.Equal(t, "location(53.800800,-1.549100):asc", clause)
}

func TestSortFor_GeocodeFailureFallsBack(t *testing.T) {
	a := NewTypesenseAdapterWithGeocoder(nil, stubGeocoder{err: errors.New("no result")})

	clause := a.sortFor(context.Background(), entities.SearchQuery{
		SortBy: entities.SortDistance,
		City:   "Atlantis",
	})

	assert.Equal(t, "popularity:desc", clause)
}

func TestSortFor_DistanceWithoutLocationFallsBack(t *testing.T) {
	a := NewTypesenseAdapterWithGeocoder(nil, stubGeocoder{})

	clause := a.sortFor(context.Background(), entities.SearchQuery{SortBy: entities.SortDistance})

	assert.Equal(t, "popularity:desc", clause)
}

func TestFilterClause_ActiveOnlyByDefault(t *testing.T) {
	assert.Equal(t, "is_active:=true", filterClause(entities.SearchQuery{}))
}

func TestFilterClause_CombinesFilters(t *testing.T) {
	q := entities.SearchQuery{
		Styles:     []string{"realism", "blackwork"},
		City:       "Leeds",
		Postcode:   "LS1",
		Difficulty: []string{"advanced"},
	}

	clause := filterClause(q)

	assert.Equal(t, "is_active:=true && styles:=[realism,blackwork] && city:=Leeds && postcode:=LS1 && difficulty:=[advanced]", clause)
}

func TestParseHits_MapsDocumentFields(t *testing.T) {
	doc := map[string]interface{}{
		"id":               "a1",
		"name":             "Ink Smith",
		"studio_name":      "Black Lotus",
		"styles":           []interface{}{"realism", "blackwork"},
		"difficulty":       []interface{}{"advanced"},
		"city":             "Leeds",
		"postcode":         "LS1 4DT",
		"location":         []interface{}{53.8, -1.55},
		"rating":           4.7,
		"review_count":     float64(120),
		"popularity":       float64(88),
		"established_year": float64(2012),
		"is_active":        true,
	}
	result := &api.SearchResult{
		Hits: &[]api.SearchResultHit{{Document: &doc}},
	}

	artists := parseHits(result)

	assert.Len(t, artists, 1)
	a := artists[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "Ink Smith", a.Name)
	assert.Equal(t, []string{"realism", "blackwork"}, a.Styles)
	assert.Equal(t, 53.8, a.Location.Latitude)
	assert.Equal(t, -1.55, a.Location.Longitude)
	assert.Equal(t, 4.7, a.Rating)
	assert.Equal(t, 120, a.ReviewCount)
	assert.Equal(t, 88, a.Popularity)
	assert.Equal(t, 2012, a.EstablishedYear)
	assert.True(t, a.IsActive)
}

func TestParseHits_NilAndMalformedHits(t *testing.T) {
	assert.Empty(t, parseHits(&api.SearchResult{}))

	doc := map[string]interface{}{"id": 42, "styles": "not-a-list"}
	result := &api.SearchResult{
		Hits: &[]api.SearchResultHit{{Document: nil}, {Document: &doc}},
	}

	artists := parseHits(result)
	assert.Len(t, artists, 1)
	assert.Empty(t, artists[0].ID)
	assert.Nil(t, artists[0].Styles)
}

func TestParseFacets_MapsCounts(t *testing.T) {
	result := &api.SearchResult{
		FacetCounts: &[]api.FacetCounts{
			{
				FieldName: pointer.String("styles"),
				Counts: &[]struct {
					Count       *int                    `json:"count,omitempty"`
					Highlighted *string                 `json:"highlighted,omitempty"`
					Parent      *map[string]interface{} `json:"parent,omitempty"`
					Value       *string                 `json:"value,omitempty"`
				}{
					{Value: pointer.String("realism"), Count: pointer.Int(12)},
					{Value: pointer.String("blackwork"), Count: pointer.Int(7)},
				},
			},
		},
	}

	facets := parseFacets(result)

	assert.Equal(t, 12, facets["styles"]["realism"])
	assert.Equal(t, 7, facets["styles"]["blackwork"])
}

func TestParseFacets_NilResult(t *testing.T) {
	assert.Nil(t, parseFacets(&api.SearchResult{}))
}

func TestSuggestionsFromFacets_TopStylesForTextQueries(t *testing.T) {
	facets := map[string]map[string]int{
		"styles": {
			"realism":     30,
			"blackwork":   20,
			"fine_line":   20,
			"japanese":    10,
			"traditional": 5,
			"dotwork":     1,
		},
	}

	suggestions := suggestionsFromFacets(entities.SearchQuery{Text: "dragon"}, facets)

	assert.Len(t, suggestions, 5)
	assert.Equal(t, "realism", suggestions[0])
	// Ties break alphabetically for stable output.
	assert.Equal(t, []string{"blackwork", "fine_line"}, suggestions[1:3])
	assert.NotContains(t, suggestions, "dotwork")
}

func TestSuggestionsFromFacets_NoTextNoSuggestions(t *testing.T) {
	facets := map[string]map[string]int{"styles": {"realism": 3}}

	assert.Nil(t, suggestionsFromFacets(entities.SearchQuery{}, facets))
	assert.Nil(t, suggestionsFromFacets(entities.SearchQuery{Text: "x"}, nil))
}
