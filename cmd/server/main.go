package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/facturier/internal/adapter/http"
	"github.com/iho/facturier/internal/adapter/http/handler"
	"github.com/iho/facturier/internal/adapter/idgen"
	"github.com/iho/facturier/internal/adapter/renderer"
	"github.com/iho/facturier/internal/adapter/repository/fs"
	postgresRepo "github.com/iho/facturier/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/facturier/internal/adapter/repository/redis"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/infrastructure/config"
	"github.com/iho/facturier/internal/infrastructure/events"
	"github.com/iho/facturier/internal/infrastructure/logger"
	"github.com/iho/facturier/internal/infrastructure/metrics"
	"github.com/iho/facturier/internal/infrastructure/postgres"
	"github.com/iho/facturier/internal/infrastructure/redis"
	"github.com/iho/facturier/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Ledger store backend
	var repo usecase.LedgerRepository
	healthChecks := map[string]handler.CheckFunc{}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to run migrations")
		}

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		appLogger.Info().Msg("connected to postgres")

		repo = postgresRepo.NewLedgerRepository(pool)
		healthChecks["postgres"] = pool.Ping
	default:
		store, err := fs.NewStore(cfg.LedgerDir)
		if err != nil {
			appLogger.Fatal().Err(err).Str("dir", cfg.LedgerDir).Msg("failed to open ledger store")
		}
		appLogger.Info().Str("dir", cfg.LedgerDir).Msg("ledger store opened")

		repo = store
	}

	// Redis is optional; without it the server just skips listing caching
	// and request idempotency.
	var cache usecase.Cache
	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		appLogger.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	// Event bus and metrics
	appMetrics := metrics.New()
	bus := events.NewBus(appLogger)
	subscribeMetrics(bus, appMetrics)

	// Number allocation
	locks := usecase.NewSeriesLocks()
	allocator := usecase.NewNumberAllocator(repo, locks)
	if err := allocator.Seed(ctx, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to seed series counters")
	}

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		Repo:      repo,
		Allocator: allocator,
		Locks:     locks,
		Cache:     cache,
		Notifier:  bus,
		Logger:    appLogger,
		CacheTTL:  cfg.ListingCacheTTL,
	})
	exportUC := usecase.NewExportUseCase(usecase.ExportConfig{
		Repo:       repo,
		Renderer:   renderer.NewHTTPRenderer(cfg.RendererURL, cfg.RendererTimeout),
		IDGen:      idgen.NewULIDGenerator(),
		Notifier:   bus,
		Logger:     appLogger,
		Stylesheet: cfg.Stylesheet,
	})

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, allocator),
		ExportHandler:    handler.NewExportHandler(exportUC),
		HealthHandler:    handler.NewHealthHandler(healthChecks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          appMetrics,
		Logger:           appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StoreBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

// subscribeMetrics keeps the domain counters in sync with ledger events.
func subscribeMetrics(bus *events.Bus, m *metrics.Metrics) {
	bus.Subscribe(usecase.EventDocumentSaved, func(payload any) {
		if key, ok := payload.(domain.LedgerKey); ok {
			m.DocumentsSaved.WithLabelValues(string(key.Series)).Inc()
		}
	})
	bus.Subscribe(usecase.EventDocumentDeleted, func(payload any) {
		if key, ok := payload.(domain.LedgerKey); ok {
			m.DocumentsDeleted.WithLabelValues(string(key.Series)).Inc()
		}
	})
	bus.Subscribe(usecase.EventExportCompleted, func(payload any) {
		m.ExportsCompleted.Inc()
	})
}
