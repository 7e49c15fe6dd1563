package providers

import (
	"context"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

// ArtistSearchProvider defines the remote search API consumed by the
// orchestration engine. A failure is a single rejected outcome with no
// partial-success state; retries, if any, live behind this interface.
type ArtistSearchProvider interface {
	Search(ctx context.Context, query entities.SearchQuery) (*entities.SearchResponse, error)
}
