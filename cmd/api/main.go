package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/adapters/events"
	"github.com/inkatlas/tattoo-directory/internal/adapters/providers/geolocation"
	adaptersearch "github.com/inkatlas/tattoo-directory/internal/adapters/search"
	"github.com/inkatlas/tattoo-directory/internal/adapters/store"
	"github.com/inkatlas/tattoo-directory/internal/api/handlers"
	"github.com/inkatlas/tattoo-directory/internal/api/routes"
	"github.com/inkatlas/tattoo-directory/internal/application/services"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	redisclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/redis"
	tsclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/typesense"
	"github.com/inkatlas/tattoo-directory/internal/infrastructure/observability"
	"github.com/inkatlas/tattoo-directory/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			metrics, err = observability.InitMetrics()
			if err != nil {
				log.Warn().Err(err).Msg("failed to initialize metrics")
			}
		}
	}

	// Key-value store: Redis when reachable, in-memory otherwise. The engine
	// treats storage as a convenience layer, so a missing Redis only costs
	// durability, not correctness.
	var kvStore providers.KVStore
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory store")
		kvStore = store.NewMemoryStore()
	} else {
		defer redisClient.Close()
		kvStore = store.NewRedisStore(redisClient)
	}

	// Remote search index
	typesenseClient, err := tsclient.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}
	if err := typesenseClient.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense schema")
	}
	// Distance sorting anchors on a geocoded postcode or city. Without an API
	// key the mock geocoder keeps the feature usable in local development.
	var geocoder providers.Geocoder
	if apiKey := os.Getenv("GOOGLE_MAPS_API_KEY"); apiKey != "" {
		geocoder = geolocation.NewGoogleGeocoder(apiKey)
	} else {
		geocoder = geolocation.NewMockGeocoder()
	}
	searcher := adaptersearch.NewTypesenseAdapterWithGeocoder(typesenseClient, geocoder)

	// Search orchestration engine
	flags := services.NewFeatureFlags()
	history := services.NewSearchHistoryService(kvStore, cfg.Search.HistoryLimit)
	analytics := services.NewSearchAnalyticsService(kvStore, cfg.Search.MaxAnalyticsEvents, cfg.Search.SlowSearchThreshold)
	performance := services.NewSearchPerformanceService(cfg.Search.SlowSearchThreshold, cfg.Search.ComplexityThreshold)
	errorTracker := services.NewSearchErrorTracker(cfg.Search.MaxTrackedErrors)
	var abtests *services.SearchABTestService
	if flags.ExperimentsEnabled() {
		abtests = services.NewSearchABTestService(ctx, kvStore)
	}

	var controllerAnalytics *services.SearchAnalyticsService
	if flags.AnalyticsEnabled() {
		analytics.LoadFromStorage(ctx)
		if redisClient != nil {
			bus := events.NewRedisEventBus(redisClient)
			defer bus.Close()
			analytics.PublishTo(bus)
		}
		controllerAnalytics = analytics
	}

	controller := services.NewSearchController(searcher, history, controllerAnalytics, performance, errorTracker, cfg.Search)

	if metrics != nil {
		controller.SetOutcomeHook(func(duration time.Duration, cacheHit bool) {
			observability.RecordSearchMetric(ctx, metrics, duration, cacheHit)
		})
	}

	warming := services.NewCacheWarmingService(controller, nil)
	go warming.WarmCache(ctx)

	searchHandler := handlers.NewSearchHandler(controller, history, analytics, performance, errorTracker)
	var abtestHandler *handlers.ABTestHandler
	if abtests != nil {
		abtestHandler = handlers.NewABTestHandler(abtests)
	}

	router := routes.NewRouter(searchHandler, abtestHandler, cfg.Server.AllowedOrigins, metrics)

	server := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting search API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if flags.AnalyticsEnabled() {
		analytics.SaveToStorage(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
