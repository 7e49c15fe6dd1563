package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	"github.com/inkatlas/tattoo-directory/pkg/cache"
)

const (
	googleGeocodeURL   = "https://maps.googleapis.com/maps/api/geocode/json"
	geocodeCacheSize   = 500
	geocodeCacheTTL    = 30 * 24 * time.Hour
	defaultHTTPTimeout = 8 * time.Second
)

// GoogleGeocoder resolves locations through the Google Maps Geocoding API.
// Lookups are cached, a postcode does not move.
type GoogleGeocoder struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache[entities.Location]
}

var _ providers.Geocoder = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder creates a geocoder using the Google Maps Geocoding API.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return NewGoogleGeocoderWithOptions(apiKey, googleGeocodeURL, nil)
}

// NewGoogleGeocoderWithOptions allows overriding the base URL and HTTP client,
// used for tests.
func NewGoogleGeocoderWithOptions(apiKey, baseURL string, httpClient *http.Client) *GoogleGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeocoder{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		cache:      cache.New[entities.Location](geocodeCacheSize, geocodeCacheTTL),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode converts a postcode or city name to coordinates.
func (g *GoogleGeocoder) Geocode(ctx context.Context, location string) (entities.Location, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return entities.Location{}, fmt.Errorf("location is required")
	}

	cacheKey := strings.ToLower(trimmed)
	if cached, ok := g.cache.Get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("region", "gb")
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return entities.Location{}, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return entities.Location{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.Location{}, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return entities.Location{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		return entities.Location{}, fmt.Errorf("no geocode result for %q (status %s)", trimmed, parsed.Status)
	}

	result := entities.Location{
		Latitude:  parsed.Results[0].Geometry.Location.Lat,
		Longitude: parsed.Results[0].Geometry.Location.Lng,
	}
	g.cache.Set(cacheKey, result)
	return result, nil
}
