package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// LineItemRequest represents one billable line in a save request.
type LineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// ClientRequest represents the document counterparty.
type ClientRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// SaveDocumentRequest represents a request to create or overwrite a
// document. Number 0 on create means "allocate the next one"; a positive
// ExpectedVersion turns the save into an optimistic overwrite.
type SaveDocumentRequest struct {
	Number          int64               `json:"number,omitempty"`
	Client          ClientRequest       `json:"client"`
	Items           []LineItemRequest   `json:"items"`
	Extras          domain.ExtrasPolicy `json:"extras"`
	Status          string              `json:"status,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	ExpectedVersion int64               `json:"expected_version,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SaveDocumentRequest) ToUseCaseInput(series domain.Series) usecase.SaveDocumentInput {
	items := make([]domain.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		}
	}

	status := domain.DocumentStatus(r.Status)
	if status == "" {
		status = domain.StatusIssued
	}

	return usecase.SaveDocumentInput{
		Document: domain.Document{
			Key: domain.LedgerKey{Series: series, Number: r.Number},
			Client: domain.Client{
				Name:    r.Client.Name,
				Address: r.Client.Address,
				TaxID:   r.Client.TaxID,
			},
			Items:  items,
			Extras: r.Extras,
			Status: status,
			Notes:  r.Notes,
		},
		ExpectedVersion: r.ExpectedVersion,
	}
}
