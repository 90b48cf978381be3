package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/facturier/internal/adapter/http/handler"
	apimiddleware "github.com/iho/facturier/internal/adapter/http/middleware"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/series/{series}/numbers",
		"GET /api/v1/documents/",
		"POST /api/v1/documents/{series}",
		"GET /api/v1/documents/{series}/{number}",
		"PUT /api/v1/documents/{series}/{number}",
		"DELETE /api/v1/documents/{series}/{number}",
		"POST /api/v1/documents/{series}/{number}/export",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"client":{"name":"ACME"},"items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/FAC", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	ledgerHandler := handler.NewLedgerHandler(&stubLedgerService{}, &stubNumberService{})
	exportHandler := handler.NewExportHandler(&stubExportService{})

	cfg := RouterConfig{
		LedgerHandler: ledgerHandler,
		ExportHandler: exportHandler,
		HealthHandler: handler.NewHealthHandler(nil),
		Logger:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubLedgerService struct{}

func (stubLedgerService) SaveDocument(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
	return &domain.LedgerEntry{Key: input.Document.Key, Document: input.Document, Version: 1}, nil
}

func (stubLedgerService) GetDocument(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	return &domain.LedgerEntry{Key: key, Document: domain.Document{Key: key}, Version: 1}, nil
}

func (stubLedgerService) ListRecent(ctx context.Context, input usecase.ListRecentInput) ([]*domain.LedgerEntry, error) {
	return nil, nil
}

func (stubLedgerService) DeleteDocument(ctx context.Context, key domain.LedgerKey) error {
	return nil
}

type stubNumberService struct{}

func (stubNumberService) Allocate(ctx context.Context, series domain.Series) (int64, error) {
	return 1, nil
}

type stubExportService struct{}

func (stubExportService) Export(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
	return &usecase.ExportResult{Primary: &usecase.RenderResult{FilePath: "/tmp/out.pdf"}}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
