package geolocation

import (
	"context"
	"strings"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
)

// MockGeocoder resolves a handful of well-known UK cities and postcode areas
// without network access, for tests and local development.
type MockGeocoder struct{}

var _ providers.Geocoder = (*MockGeocoder)(nil)

// NewMockGeocoder creates a mock geocoder
func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{}
}

var mockLocations = map[string]entities.Location{
	"london":     {Latitude: 51.5074, Longitude: -0.1278},
	"manchester": {Latitude: 53.4808, Longitude: -2.2426},
	"leeds":      {Latitude: 53.8008, Longitude: -1.5491},
	"bristol":    {Latitude: 51.4545, Longitude: -2.5879},
	"glasgow":    {Latitude: 55.8642, Longitude: -4.2518},
	"ls1":        {Latitude: 53.7997, Longitude: -1.5492},
	"m1":         {Latitude: 53.4772, Longitude: -2.2343},
	"ec1":        {Latitude: 51.5246, Longitude: -0.0980},
}

// Geocode matches the location against the canned table, falling back to
// central London.
func (m *MockGeocoder) Geocode(ctx context.Context, location string) (entities.Location, error) {
	key := strings.ToLower(strings.TrimSpace(location))
	for name, coords := range mockLocations {
		if strings.HasPrefix(key, name) {
			return coords, nil
		}
	}
	return mockLocations["london"], nil
}
