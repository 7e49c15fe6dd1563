package providers

import (
	"context"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

// Geocoder resolves a free-form location, a postcode or a city name, to
// coordinates. Used to anchor distance-sorted searches.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (entities.Location, error)
}
