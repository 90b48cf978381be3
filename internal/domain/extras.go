package domain

import "github.com/shopspring/decimal"

// WithholdingBase selects the base the withholding percentage applies to.
type WithholdingBase string

const (
	// WithholdingBaseInclusive applies the rate to the tax-inclusive grand
	// total. This is the default interpretation of retenue à la source.
	WithholdingBaseInclusive WithholdingBase = "ttc"
	// WithholdingBaseExclusive applies the rate to the pre-tax subtotal
	// plus pre-tax extras.
	WithholdingBaseExclusive WithholdingBase = "ht"
)

// PercentExtra is a percentage surcharge with its own tax rate.
type PercentExtra struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"`
	TaxRate decimal.Decimal `json:"tax_rate"`
	Label   string          `json:"label,omitempty"`
}

// AmountExtra is a flat surcharge with its own tax rate.
type AmountExtra struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
	TaxRate decimal.Decimal `json:"tax_rate"`
	Label   string          `json:"label,omitempty"`
}

// Withholding is a percentage deducted from the total, computed last and
// never compounded into the other extras.
type Withholding struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"`
	Base    WithholdingBase `json:"base,omitempty"`
	Label   string          `json:"label,omitempty"`
}

// ExtrasPolicy describes which surcharges are active and their rates.
// Pure data, passed by value into the totals computation.
type ExtrasPolicy struct {
	Fodec       PercentExtra `json:"fodec"`
	Shipping    AmountExtra  `json:"shipping"`
	Stamp       AmountExtra  `json:"stamp"`
	Withholding Withholding  `json:"withholding"`
}

// EffectiveBase returns the configured withholding base, defaulting to the
// tax-inclusive grand total when unset.
func (w Withholding) EffectiveBase() WithholdingBase {
	if w.Base == WithholdingBaseExclusive {
		return WithholdingBaseExclusive
	}
	return WithholdingBaseInclusive
}
