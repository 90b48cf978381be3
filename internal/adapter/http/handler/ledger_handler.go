package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/facturier/internal/adapter/http/dto"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	SaveDocument(ctx context.Context, input usecase.SaveDocumentInput) (*domain.LedgerEntry, error)
	GetDocument(ctx context.Context, key domain.LedgerKey) (*domain.LedgerEntry, error)
	ListRecent(ctx context.Context, input usecase.ListRecentInput) ([]*domain.LedgerEntry, error)
	DeleteDocument(ctx context.Context, key domain.LedgerKey) error
}

// NumberService defines the allocation behavior needed by LedgerHandler.
type NumberService interface {
	Allocate(ctx context.Context, series domain.Series) (int64, error)
}

// LedgerHandler handles document-related HTTP requests.
type LedgerHandler struct {
	ledgerUC  LedgerService
	allocator NumberService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, allocator NumberService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, allocator: allocator}
}

// AllocateNumber reserves the next number for a series.
func (h *LedgerHandler) AllocateNumber(w http.ResponseWriter, r *http.Request) {
	series := domain.Series(chi.URLParam(r, "series"))

	number, err := h.allocator.Allocate(r.Context(), series)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to allocate number", err.Error())
		return
	}

	key := domain.LedgerKey{Series: series, Number: number}
	writeJSON(w, http.StatusCreated, dto.NumberResponse{
		Series:    series,
		Number:    number,
		Reference: key.String(),
	})
}

// Create saves a new document, allocating a number when none is given.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	series := domain.Series(chi.URLParam(r, "series"))

	var req dto.SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.ExpectedVersion = 0

	entry, err := h.ledgerUC.SaveDocument(r.Context(), req.ToUseCaseInput(series))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to save document", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DocumentFromEntry(entry))
}

// Update overwrites an existing document under optimistic concurrency.
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document key", err.Error())
		return
	}

	var req dto.SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.ExpectedVersion <= 0 {
		writeError(w, http.StatusBadRequest, "missing expected_version",
			"overwrites require the version read before editing")
		return
	}
	req.Number = key.Number

	entry, err := h.ledgerUC.SaveDocument(r.Context(), req.ToUseCaseInput(key.Series))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to save document", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromEntry(entry))
}

// Get retrieves a document by key.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document key", err.Error())
		return
	}

	entry, err := h.ledgerUC.GetDocument(r.Context(), key)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get document", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromEntry(entry))
}

// List lists recent documents, optionally filtered by series.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	input := usecase.ListRecentInput{
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}
	if s := r.URL.Query().Get("series"); s != "" {
		series := domain.Series(s)
		input.Series = &series
	}

	entries, err := h.ledgerUC.ListRecent(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list documents", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListDocumentsResponse{
		Documents: dto.SummariesFromEntries(entries),
		Count:     len(entries),
	})
}

// Delete tombstones a document. Idempotent.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document key", err.Error())
		return
	}

	if err := h.ledgerUC.DeleteDocument(r.Context(), key); err != nil {
		writeError(w, mapDomainError(err), "failed to delete document", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
