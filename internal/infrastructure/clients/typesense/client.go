package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/inkatlas/tattoo-directory/pkg/config"
	"github.com/inkatlas/tattoo-directory/pkg/retry"
)

const (
	ArtistsCollection = "artists"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("Typesense connection attempt failed, retrying")
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Msg("Connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the artists collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == ArtistsCollection {
			log.Debug().Msg("Typesense collection 'artists' already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: ArtistsCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "name",
				Type: "string",
				Sort: pointer.True(),
			},
			{
				Name:     "studio_name",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:  "styles",
				Type:  "string[]",
				Facet: pointer.True(),
			},
			{
				Name:     "difficulty",
				Type:     "string[]",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name:  "city",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:     "postcode",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name: "location",
				Type: "geopoint",
			},
			{
				Name:  "rating",
				Type:  "float",
				Facet: pointer.True(),
			},
			{
				Name: "review_count",
				Type: "int32",
			},
			{
				Name: "popularity",
				Type: "int32",
			},
			{
				Name:     "established_year",
				Type:     "int32",
				Optional: pointer.True(),
			},
			{
				Name: "is_active",
				Type: "bool",
			},
			{
				Name: "created_at",
				Type: "int64",
			},
		},
		DefaultSortingField: pointer.String("popularity"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Msg("Created Typesense collection 'artists'")
	return nil
}

// DropSchema deletes the artists collection if it exists
func (c *Client) DropSchema(ctx context.Context) error {
	_, err := c.client.Collection(ArtistsCollection).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// IndexArtist indexes an artist document
func (c *Client) IndexArtist(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(ArtistsCollection).Documents().Upsert(ctx, document)
	return err
}
