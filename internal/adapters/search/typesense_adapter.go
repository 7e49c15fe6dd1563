package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	tsclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/typesense"
	apperrors "github.com/inkatlas/tattoo-directory/pkg/errors"
)

const maxSuggestions = 5

// TypesenseAdapter implements artist search using Typesense
type TypesenseAdapter struct {
	client   *tsclient.Client
	geocoder providers.Geocoder
}

// Ensure TypesenseAdapter implements ArtistSearchProvider
var _ providers.ArtistSearchProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// NewTypesenseAdapterWithGeocoder creates an adapter that can anchor
// distance-sorted searches on a geocoded postcode or city
func NewTypesenseAdapterWithGeocoder(client *tsclient.Client, geocoder providers.Geocoder) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, geocoder: geocoder}
}

// Index indexes an artist
func (a *TypesenseAdapter) Index(ctx context.Context, artist *entities.Artist) error {
	document := map[string]interface{}{
		"id":               artist.ID,
		"name":             artist.Name,
		"studio_name":      artist.StudioName,
		"styles":           artist.Styles,
		"difficulty":       artist.Difficulty,
		"city":             artist.City,
		"postcode":         artist.Postcode,
		"location":         []float64{artist.Location.Latitude, artist.Location.Longitude},
		"rating":           artist.Rating,
		"review_count":     artist.ReviewCount,
		"popularity":       artist.Popularity,
		"established_year": artist.EstablishedYear,
		"is_active":        artist.IsActive,
		"created_at":       artist.CreatedAt.Unix(),
	}

	if err := a.client.IndexArtist(ctx, document); err != nil {
		return fmt.Errorf("failed to index artist: %w", err)
	}
	return nil
}

// Delete removes an artist from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.ArtistsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete artist from index: %w", err)
	}
	return nil
}

// Search runs one normalized query against the artist collection
func (a *TypesenseAdapter) Search(ctx context.Context, query entities.SearchQuery) (*entities.SearchResponse, error) {
	query = entities.NewSearchQuery(query)

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(queryText(query)),
		QueryBy: pointer.String("name,studio_name,styles,city"),
		FacetBy: pointer.String("styles,difficulty,city"),
		SortBy:  pointer.String(a.sortFor(ctx, query)),
		Page:    pointer.Int(query.Page),
		PerPage: pointer.Int(query.PageSize),
	}
	if filter := filterClause(query); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(tsclient.ArtistsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewSearchError("artist search failed", err)
	}

	response := &entities.SearchResponse{
		Artists: parseHits(result),
		Facets:  parseFacets(result),
	}
	if result.Found != nil {
		response.TotalCount = *result.Found
	}
	response.Suggestions = suggestionsFromFacets(query, response.Facets)

	return response, nil
}

func queryText(q entities.SearchQuery) string {
	if q.Text == "" {
		return "*"
	}
	return q.Text
}

// sortFor resolves the sort expression for one search. Distance sorting needs
// a coordinate: the query's postcode or city is geocoded when a geocoder is
// configured, otherwise distance degrades to popularity.
func (a *TypesenseAdapter) sortFor(ctx context.Context, query entities.SearchQuery) string {
	if query.SortBy == entities.SortDistance && a.geocoder != nil {
		location := query.Postcode
		if location == "" {
			location = query.City
		}
		if location != "" {
			anchor, err := a.geocoder.Geocode(ctx, location)
			if err == nil {
				return fmt.Sprintf("location(%f,%f):asc", anchor.Latitude, anchor.Longitude)
			}
			log.Warn().Str("location", location).Err(err).Msg("geocoding failed, sorting by popularity")
		}
	}
	return sortClause(query.SortBy)
}

// sortClause maps a sort mode to a Typesense sort_by expression
func sortClause(mode entities.SortMode) string {
	switch mode {
	case entities.SortPopularity, entities.SortDistance:
		return "popularity:desc"
	case entities.SortName:
		return "name:asc"
	case entities.SortEstablished:
		return "established_year:asc"
	case entities.SortRating:
		return "rating:desc"
	default:
		return "_text_match:desc,popularity:desc"
	}
}

func filterClause(q entities.SearchQuery) string {
	clauses := []string{"is_active:=true"}

	if len(q.Styles) > 0 {
		clauses = append(clauses, fmt.Sprintf("styles:=[%s]", strings.Join(q.Styles, ",")))
	}
	if q.City != "" {
		clauses = append(clauses, fmt.Sprintf("city:=%s", q.City))
	}
	if q.Postcode != "" {
		clauses = append(clauses, fmt.Sprintf("postcode:=%s", q.Postcode))
	}
	if len(q.Difficulty) > 0 {
		clauses = append(clauses, fmt.Sprintf("difficulty:=[%s]", strings.Join(q.Difficulty, ",")))
	}

	return strings.Join(clauses, " && ")
}

func parseHits(result *api.SearchResult) []*entities.Artist {
	artists := []*entities.Artist{}
	if result.Hits == nil {
		return artists
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		artist := &entities.Artist{
			ID:         stringField(doc, "id"),
			Name:       stringField(doc, "name"),
			StudioName: stringField(doc, "studio_name"),
			Styles:     stringSliceField(doc, "styles"),
			Difficulty: stringSliceField(doc, "difficulty"),
			City:       stringField(doc, "city"),
			Postcode:   stringField(doc, "postcode"),
		}

		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			if lat, ok := loc[0].(float64); ok {
				artist.Location.Latitude = lat
			}
			if lon, ok := loc[1].(float64); ok {
				artist.Location.Longitude = lon
			}
		}
		if val, ok := doc["rating"].(float64); ok {
			artist.Rating = val
		}
		if val, ok := doc["review_count"].(float64); ok {
			artist.ReviewCount = int(val)
		}
		if val, ok := doc["popularity"].(float64); ok {
			artist.Popularity = int(val)
		}
		if val, ok := doc["established_year"].(float64); ok {
			artist.EstablishedYear = int(val)
		}
		if val, ok := doc["is_active"].(bool); ok {
			artist.IsActive = val
		}

		artists = append(artists, artist)
	}

	return artists
}

func parseFacets(result *api.SearchResult) map[string]map[string]int {
	if result.FacetCounts == nil || len(*result.FacetCounts) == 0 {
		return nil
	}

	facets := make(map[string]map[string]int)
	for _, facet := range *result.FacetCounts {
		if facet.FieldName == nil || facet.Counts == nil {
			continue
		}
		counts := make(map[string]int)
		for _, c := range *facet.Counts {
			if c.Value == nil || c.Count == nil {
				continue
			}
			counts[*c.Value] = *c.Count
		}
		facets[*facet.FieldName] = counts
	}
	return facets
}

// suggestionsFromFacets surfaces the most populated style buckets as query
// refinements when the search carried free text.
func suggestionsFromFacets(q entities.SearchQuery, facets map[string]map[string]int) []string {
	if q.Text == "" {
		return nil
	}
	styles, ok := facets["styles"]
	if !ok || len(styles) == 0 {
		return nil
	}

	suggestions := make([]string, 0, len(styles))
	for value := range styles {
		suggestions = append(suggestions, value)
	}
	// Highest counts first, name as tiebreaker for stable output.
	sort.Slice(suggestions, func(i, j int) bool {
		if styles[suggestions[i]] != styles[suggestions[j]] {
			return styles[suggestions[i]] > styles[suggestions[j]]
		}
		return suggestions[i] < suggestions[j]
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func stringField(doc map[string]interface{}, key string) string {
	if val, ok := doc[key].(string); ok {
		return val
	}
	return ""
}

func stringSliceField(doc map[string]interface{}, key string) []string {
	raw, ok := doc[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
