package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NumberResponse represents an allocated document number.
type NumberResponse struct {
	Series    domain.Series `json:"series"`
	Number    int64         `json:"number"`
	Reference string        `json:"reference"`
}

// DocumentResponse represents a stored document in API responses.
type DocumentResponse struct {
	Series    domain.Series       `json:"series"`
	Number    int64               `json:"number"`
	Reference string              `json:"reference"`
	Client    domain.Client       `json:"client"`
	Items     []domain.LineItem   `json:"items"`
	Extras    domain.ExtrasPolicy `json:"extras"`
	Totals    domain.Totals       `json:"totals"`
	Status    string              `json:"status"`
	Notes     string              `json:"notes,omitempty"`
	Version   int64               `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// DocumentFromEntry converts a ledger entry to a response.
func DocumentFromEntry(e *domain.LedgerEntry) *DocumentResponse {
	return &DocumentResponse{
		Series:    e.Key.Series,
		Number:    e.Key.Number,
		Reference: e.Key.String(),
		Client:    e.Document.Client,
		Items:     e.Document.Items,
		Extras:    e.Document.Extras,
		Totals:    e.Document.Totals,
		Status:    string(e.Document.Status),
		Notes:     e.Document.Notes,
		Version:   e.Version,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// DocumentSummary is the compact listing view.
type DocumentSummary struct {
	Series        domain.Series   `json:"series"`
	Number        int64           `json:"number"`
	Reference     string          `json:"reference"`
	ClientName    string          `json:"client_name"`
	GrandTotalTTC decimal.Decimal `json:"grand_total_ttc"`
	NetPayable    decimal.Decimal `json:"net_payable"`
	Status        string          `json:"status"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SummariesFromEntries converts ledger entries to listing summaries.
func SummariesFromEntries(entries []*domain.LedgerEntry) []*DocumentSummary {
	result := make([]*DocumentSummary, len(entries))
	for i, e := range entries {
		result[i] = &DocumentSummary{
			Series:        e.Key.Series,
			Number:        e.Key.Number,
			Reference:     e.Key.String(),
			ClientName:    e.Document.Client.Name,
			GrandTotalTTC: e.Document.Totals.GrandTotalTTC,
			NetPayable:    e.Document.Totals.NetPayable,
			Status:        string(e.Document.Status),
			UpdatedAt:     e.UpdatedAt,
		}
	}
	return result
}

// ListDocumentsResponse wraps a listing page.
type ListDocumentsResponse struct {
	Documents []*DocumentSummary `json:"documents"`
	Count     int                `json:"count"`
}

// RenderFileResponse represents one rendered file.
type RenderFileResponse struct {
	FilePath    string `json:"file_path"`
	DisplayName string `json:"display_name"`
}

// ExportResponse represents the outcome of an export.
type ExportResponse struct {
	Primary          *RenderFileResponse `json:"primary"`
	Certificate      *RenderFileResponse `json:"certificate,omitempty"`
	CertificateError bool                `json:"certificate_error,omitempty"`
}

// ExportFromResult converts a use case export result to a response.
func ExportFromResult(r *usecase.ExportResult) *ExportResponse {
	resp := &ExportResponse{
		Primary: &RenderFileResponse{
			FilePath:    r.Primary.FilePath,
			DisplayName: r.Primary.DisplayName,
		},
		CertificateError: r.CertificateError,
	}
	if r.Certificate != nil {
		resp.Certificate = &RenderFileResponse{
			FilePath:    r.Certificate.FilePath,
			DisplayName: r.Certificate.DisplayName,
		}
	}
	return resp
}
