package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Series is a namespace for document numbering, one per document type.
type Series string

const (
	SeriesInvoice       Series = "FAC"
	SeriesQuote         Series = "DEV"
	SeriesDeliveryNote  Series = "BL"
	SeriesPurchaseOrder Series = "BC"
)

// KnownSeries lists every valid series, in listing order.
var KnownSeries = []Series{SeriesInvoice, SeriesQuote, SeriesDeliveryNote, SeriesPurchaseOrder}

// Valid reports whether s is one of the known series.
func (s Series) Valid() bool {
	switch s {
	case SeriesInvoice, SeriesQuote, SeriesDeliveryNote, SeriesPurchaseOrder:
		return true
	}
	return false
}

// LedgerKey addresses one document slot. Numbers are strictly increasing
// per series and never reused, even after deletion.
type LedgerKey struct {
	Series Series `json:"series"`
	Number int64  `json:"number"`
}

// String renders the key in document-reference form, e.g. "FAC-000042".
func (k LedgerKey) String() string {
	return fmt.Sprintf("%s-%06d", k.Series, k.Number)
}

// DocumentStatus tracks a document's lifecycle.
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusIssued   DocumentStatus = "issued"
	StatusExported DocumentStatus = "exported"
)

// Client identifies the document's counterparty.
type Client struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// LineItem is one billable line. Immutable once totals are computed for
// a given export.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// Document is the full invoice/quote/delivery-note/purchase-order payload.
type Document struct {
	Key    LedgerKey      `json:"key"`
	Client Client         `json:"client"`
	Items  []LineItem     `json:"items"`
	Extras ExtrasPolicy   `json:"extras"`
	Totals Totals         `json:"totals"`
	Status DocumentStatus `json:"status"`
	Notes  string         `json:"notes,omitempty"`
}

// LedgerEntry is the persisted snapshot for one ledger key. The store
// exclusively owns this state; a tombstoned entry stays addressable so its
// number is never reallocated, but is excluded from listings.
type LedgerEntry struct {
	Key       LedgerKey `json:"key"`
	Document  Document  `json:"document"`
	Version   int64     `json:"version"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReservation builds the placeholder entry written to reserve a number.
// It is a draft document at version 1; the first real save overwrites it.
func NewReservation(key LedgerKey, now time.Time) *LedgerEntry {
	return &LedgerEntry{
		Key: key,
		Document: Document{
			Key:    key,
			Status: StatusDraft,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
