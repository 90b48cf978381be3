package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/facturier/internal/adapter/http/dto"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

type exportServiceStub struct {
	exportFn func(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error)
}

func (s *exportServiceStub) Export(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
	return s.exportFn(ctx, key)
}

func TestExportHandler_Success(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{
		exportFn: func(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
			return &usecase.ExportResult{
				Primary:     &usecase.RenderResult{FilePath: "/renders/FAC-000007.pdf", DisplayName: "FAC-000007.pdf"},
				Certificate: &usecase.RenderResult{FilePath: "/renders/FAC-000007-retenue.pdf", DisplayName: "FAC-000007-retenue.pdf"},
			}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC/7/export", nil),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Export(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ExportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Primary.FilePath != "/renders/FAC-000007.pdf" {
		t.Fatalf("unexpected primary: %+v", resp.Primary)
	}
	if resp.Certificate == nil || resp.CertificateError {
		t.Fatalf("expected certificate without error, got %+v", resp)
	}
}

func TestExportHandler_CertificateDegraded(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{
		exportFn: func(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
			return &usecase.ExportResult{
				Primary:          &usecase.RenderResult{FilePath: "/renders/FAC-000007.pdf", DisplayName: "FAC-000007.pdf"},
				CertificateError: true,
			}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC/7/export", nil),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Export(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ExportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Certificate != nil || !resp.CertificateError {
		t.Fatalf("expected degraded certificate, got %+v", resp)
	}
}

func TestExportHandler_RenderFailure(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{
		exportFn: func(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
			return nil, fmt.Errorf("%w: primary document %s: boom", domain.ErrRenderFailure, key)
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC/7/export", nil),
		map[string]string{"series": "FAC", "number": "7"})
	rec := httptest.NewRecorder()

	h.Export(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestExportHandler_NotFound(t *testing.T) {
	h := NewExportHandler(&exportServiceStub{
		exportFn: func(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/documents/FAC/99/export", nil),
		map[string]string{"series": "FAC", "number": "99"})
	rec := httptest.NewRecorder()

	h.Export(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
