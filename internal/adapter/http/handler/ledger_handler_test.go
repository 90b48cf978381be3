package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/facturier/internal/adapter/http/dto"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

type ledgerServiceStub struct {
	saveFn   func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error)
	getFn    func(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error)
	listFn   func(ctx context.Context, input usecase.ListRecentInput) ([]*domain.LedgerEntry, error)
	deleteFn func(ctx context.Context, key domain.LedgerKey) error
}

func (s *ledgerServiceStub) SaveDocument(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
	return s.saveFn(ctx, input)
}

func (s *ledgerServiceStub) GetDocument(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
	return s.getFn(ctx, key)
}

func (s *ledgerServiceStub) ListRecent(ctx context.Context, input usecase.ListRecentInput) ([]*domain.LedgerEntry, error) {
	return s.listFn(ctx, input)
}

func (s *ledgerServiceStub) DeleteDocument(ctx context.Context, key domain.LedgerKey) error {
	return s.deleteFn(ctx, key)
}

type numberServiceStub struct {
	allocateFn func(ctx context.Context, series domain.Series) (int64, error)
}

func (s *numberServiceStub) Allocate(ctx context.Context, series domain.Series) (int64, error) {
	return s.allocateFn(ctx, series)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleEntry() *domain.LedgerEntry {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	key := domain.LedgerKey{Series: domain.SeriesInvoice, Number: 7}
	return &domain.LedgerEntry{
		Key: key,
		Document: domain.Document{
			Key:    key,
			Client: domain.Client{Name: "ACME"},
			Items: []domain.LineItem{{
				Description: "widget",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(100),
				TaxRate:     decimal.NewFromInt(19),
			}},
			Status: domain.StatusIssued,
		},
		Version:   2,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestLedgerHandler_AllocateNumber_Success(t *testing.T) {
	var captured domain.Series
	h := NewLedgerHandler(nil, &numberServiceStub{
		allocateFn: func(ctx context.Context, series domain.Series) (int64, error) {
			captured = series
			return 42, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/series/FAC/numbers", nil),
		map[string]string{"series": "FAC"})
	rec := httptest.NewRecorder()

	h.AllocateNumber(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured != domain.SeriesInvoice {
		t.Fatalf("expected series FAC, got %s", captured)
	}

	var resp dto.NumberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Number != 42 || resp.Reference != "FAC-000042" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_AllocateNumber_UnknownSeries(t *testing.T) {
	h := NewLedgerHandler(nil, &numberServiceStub{
		allocateFn: func(ctx context.Context, series domain.Series) (int64, error) {
			return 0, fmt.Errorf("%w: unknown series %q", domain.ErrInvalidInput, series)
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/series/XXX/numbers", nil),
		map[string]string{"series": "XXX"})
	rec := httptest.NewRecorder()

	h.AllocateNumber(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Create_Success(t *testing.T) {
	entry := sampleEntry()

	var captured usecase.SaveDocumentInput
	h := NewLedgerHandler(&ledgerServiceStub{
		saveFn: func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
			captured = input
			return entry, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.SaveDocumentRequest{
		Client: dto.ClientRequest{Name: "ACME"},
		Items: []dto.LineItemRequest{{
			Description: "widget",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(100),
			TaxRate:     decimal.NewFromInt(19),
		}},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC", bytes.NewReader(body)),
		map[string]string{"series": "FAC"})
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Document.Key.Series != domain.SeriesInvoice || captured.Document.Key.Number != 0 {
		t.Fatalf("expected allocation key, got %+v", captured.Document.Key)
	}
	if captured.ExpectedVersion != 0 {
		t.Fatalf("create must not carry an expected version, got %d", captured.ExpectedVersion)
	}
	if captured.Document.Status != domain.StatusIssued {
		t.Fatalf("expected default status issued, got %s", captured.Document.Status)
	}

	var resp dto.DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reference != "FAC-000007" || resp.Version != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_Create_InvalidJSON(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		saveFn: func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
			t.Fatal("SaveDocument should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC", bytes.NewBufferString("{invalid")),
		map[string]string{"series": "FAC"})
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Update_RequiresExpectedVersion(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		saveFn: func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
			t.Fatal("SaveDocument should not be called without expected_version")
			return nil, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.SaveDocumentRequest{Client: dto.ClientRequest{Name: "ACME"}})
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/documents/FAC/7", bytes.NewReader(body)),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Update_VersionConflict(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		saveFn: func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
			return nil, fmt.Errorf("%w: version mismatch", domain.ErrConflict)
		},
	}, nil)

	body, _ := json.Marshal(dto.SaveDocumentRequest{
		Client:          dto.ClientRequest{Name: "ACME"},
		ExpectedVersion: 2,
	})
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/documents/FAC/7", bytes.NewReader(body)),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLedgerHandler_Update_UsesKeyFromURL(t *testing.T) {
	entry := sampleEntry()

	var captured usecase.SaveDocumentInput
	h := NewLedgerHandler(&ledgerServiceStub{
		saveFn: func(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error) {
			captured = input
			return entry, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.SaveDocumentRequest{
		Number:          999, // body number must lose against the URL
		Client:          dto.ClientRequest{Name: "ACME"},
		ExpectedVersion: 2,
	})
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/documents/FAC/7", bytes.NewReader(body)),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Document.Key.Number != 7 {
		t.Fatalf("expected URL number 7, got %d", captured.Document.Key.Number)
	}
	if captured.ExpectedVersion != 2 {
		t.Fatalf("expected version 2, got %d", captured.ExpectedVersion)
	}
}

func TestLedgerHandler_Get_NotFound(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		getFn: func(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		},
	}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/documents/FAC/7", nil),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_Get_BadNumber(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/documents/FAC/abc", nil),
		map[string]string{"series": "FAC", "number": "abc"})
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_List_FiltersBySeries(t *testing.T) {
	var captured usecase.ListRecentInput
	h := NewLedgerHandler(&ledgerServiceStub{
		listFn: func(ctx context.Context, input usecase.ListRecentInput) ([]*domain.LedgerEntry, error) {
			captured = input
			return []*domain.LedgerEntry{sampleEntry()}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents?series=DEV&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Series == nil || *captured.Series != domain.SeriesQuote {
		t.Fatalf("expected series filter DEV, got %v", captured.Series)
	}
	if captured.Limit != 10 || captured.Offset != 5 {
		t.Fatalf("expected pagination 10/5, got %d/%d", captured.Limit, captured.Offset)
	}

	var resp dto.ListDocumentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Documents[0].Reference != "FAC-000007" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_Delete_NoContent(t *testing.T) {
	var captured domain.LedgerKey
	h := NewLedgerHandler(&ledgerServiceStub{
		deleteFn: func(ctx context.Context, key domain.LedgerKey) error {
			captured = key
			return nil
		},
	}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/documents/FAC/7", nil),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if captured != (domain.LedgerKey{Series: domain.SeriesInvoice, Number: 7}) {
		t.Fatalf("unexpected key: %+v", captured)
	}
}
