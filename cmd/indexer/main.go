package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	adaptersearch "github.com/inkatlas/tattoo-directory/internal/adapters/search"
	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	tsclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/typesense"
	"github.com/inkatlas/tattoo-directory/internal/infrastructure/observability"
	"github.com/inkatlas/tattoo-directory/pkg/config"
)

func main() {
	var seedPath string
	var reset bool
	var intervalFlag string
	flag.StringVar(&seedPath, "seed", "seed/artists.json", "path to the artist seed file")
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("tattoo-directory-indexer", cfg.Server.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, seedPath, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, seedPath string, reset bool) error {
	client, err := tsclient.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		if err := client.DropSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("could not drop existing collection")
		}
	}
	if err := client.InitSchema(ctx); err != nil {
		return err
	}

	artists, err := loadSeed(seedPath)
	if err != nil {
		return err
	}

	adapter := adaptersearch.NewTypesenseAdapter(client)
	indexed := 0
	for _, artist := range artists {
		if err := adapter.Index(ctx, artist); err != nil {
			log.Warn().Str("artist", artist.ID).Err(err).Msg("failed to index artist")
			continue
		}
		indexed++
	}

	log.Info().Int("indexed", indexed).Int("total", len(artists)).Msg("reindex finished")
	return nil
}

func loadSeed(path string) ([]*entities.Artist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var artists []*entities.Artist
	if err := json.Unmarshal(data, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}
