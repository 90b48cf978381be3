package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/facturier/internal/adapter/http/handler"
	"github.com/iho/facturier/internal/adapter/http/middleware"
	"github.com/iho/facturier/internal/infrastructure/metrics"
	"github.com/iho/facturier/internal/usecase"
)

// RouterConfig holds dependencies for the router. IdempotencyStore and
// Metrics are optional.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	ExportHandler    *handler.ExportHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Numbering
		r.Post("/series/{series}/numbers", cfg.LedgerHandler.AllocateNumber)

		// Documents
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", cfg.LedgerHandler.List)
			r.Post("/{series}", cfg.LedgerHandler.Create)
			r.Get("/{series}/{number}", cfg.LedgerHandler.Get)
			r.Put("/{series}/{number}", cfg.LedgerHandler.Update)
			r.Delete("/{series}/{number}", cfg.LedgerHandler.Delete)
			r.Post("/{series}/{number}/export", cfg.ExportHandler.Export)
		})
	})

	return r
}
