package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDescriptionLength = 512
	MaxLineItems         = 500
	DefaultPageSize      = 50
	MaxPageSize          = 500
)

// ValidateSeries checks that s is a known document series.
func ValidateSeries(s Series) error {
	if !s.Valid() {
		return fmt.Errorf("%w: unknown series %q", ErrInvalidInput, string(s))
	}
	return nil
}

// ValidateKey checks that a ledger key addresses a plausible slot.
func ValidateKey(key LedgerKey) error {
	if err := ValidateSeries(key.Series); err != nil {
		return err
	}
	if key.Number <= 0 {
		return fmt.Errorf("%w: document number must be positive, got %d", ErrInvalidInput, key.Number)
	}
	return nil
}

// ValidateLineItems rejects negative quantities, prices and out-of-range
// tax rates. An empty set is valid and yields zero totals.
func ValidateLineItems(items []LineItem) error {
	if len(items) > MaxLineItems {
		return fmt.Errorf("%w: at most %d line items", ErrInvalidInput, MaxLineItems)
	}

	for i, item := range items {
		if len(strings.TrimSpace(item.Description)) > MaxDescriptionLength {
			return fmt.Errorf("%w: line %d description exceeds %d characters", ErrInvalidInput, i, MaxDescriptionLength)
		}
		if item.Quantity.IsNegative() {
			return fmt.Errorf("%w: line %d quantity is negative", ErrInvalidInput, i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d unit price is negative", ErrInvalidInput, i)
		}
		if err := validateRate(item.TaxRate); err != nil {
			return fmt.Errorf("%w: line %d tax rate: %v", ErrInvalidInput, i, err)
		}
	}

	return nil
}

// ValidateExtras checks the rates and amounts of every configured extra,
// enabled or not, so a disabled-but-malformed extra is caught before it is
// toggled on.
func ValidateExtras(policy ExtrasPolicy) error {
	if err := validateRate(policy.Fodec.Rate); err != nil {
		return fmt.Errorf("%w: fodec rate: %v", ErrInvalidInput, err)
	}
	if err := validateRate(policy.Fodec.TaxRate); err != nil {
		return fmt.Errorf("%w: fodec tax rate: %v", ErrInvalidInput, err)
	}
	if policy.Shipping.Amount.IsNegative() {
		return fmt.Errorf("%w: shipping amount is negative", ErrInvalidInput)
	}
	if err := validateRate(policy.Shipping.TaxRate); err != nil {
		return fmt.Errorf("%w: shipping tax rate: %v", ErrInvalidInput, err)
	}
	if policy.Stamp.Amount.IsNegative() {
		return fmt.Errorf("%w: stamp amount is negative", ErrInvalidInput)
	}
	if err := validateRate(policy.Stamp.TaxRate); err != nil {
		return fmt.Errorf("%w: stamp tax rate: %v", ErrInvalidInput, err)
	}
	if err := validateRate(policy.Withholding.Rate); err != nil {
		return fmt.Errorf("%w: withholding rate: %v", ErrInvalidInput, err)
	}
	switch policy.Withholding.Base {
	case "", WithholdingBaseInclusive, WithholdingBaseExclusive:
	default:
		return fmt.Errorf("%w: unknown withholding base %q", ErrInvalidInput, string(policy.Withholding.Base))
	}
	return nil
}

// ValidateDocument checks a document before it is saved.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}
	if len(strings.TrimSpace(doc.Client.Name)) == 0 && doc.Status != StatusDraft {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if err := ValidateLineItems(doc.Items); err != nil {
		return err
	}
	return ValidateExtras(doc.Extras)
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("rate is negative")
	}
	if rate.GreaterThan(hundred) {
		return fmt.Errorf("rate exceeds 100")
	}
	return nil
}
