package handler

import (
	"context"
	"net/http"

	"github.com/iho/facturier/internal/adapter/http/dto"
	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// ExportService defines the behavior needed by ExportHandler.
type ExportService interface {
	Export(ctx context.Context, key domain.LedgerKey) (*usecase.ExportResult, error)
}

// ExportHandler handles export HTTP requests.
type ExportHandler struct {
	exportUC ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportUC ExportService) *ExportHandler {
	return &ExportHandler{exportUC: exportUC}
}

// Export renders a document, plus its withholding certificate when one
// applies.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document key", err.Error())
		return
	}

	result, err := h.exportUC.Export(r.Context(), key)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to export document", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExportFromResult(result))
}
