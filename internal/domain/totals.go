package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is the full monetary breakdown of a document. HT values are
// tax-exclusive, TTC values tax-inclusive. Every field is rounded to the
// currency's minor unit (2 decimals, round-half-to-even), once, at the point
// it is derived; no unrounded fraction is carried between steps, so the
// computation is reproducible for identical input.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
	SubtotalTTC decimal.Decimal `json:"subtotal_ttc"`

	FodecHT     decimal.Decimal `json:"fodec_ht"`
	FodecTTC    decimal.Decimal `json:"fodec_ttc"`
	ShippingHT  decimal.Decimal `json:"shipping_ht"`
	ShippingTTC decimal.Decimal `json:"shipping_ttc"`
	StampHT     decimal.Decimal `json:"stamp_ht"`
	StampTTC    decimal.Decimal `json:"stamp_ttc"`

	GrandTotalTTC     decimal.Decimal `json:"grand_total_ttc"`
	WithholdingAmount decimal.Decimal `json:"withholding_amount"`
	NetPayable        decimal.Decimal `json:"net_payable"`
}

// ComputeTotals derives the totals breakdown from line items and the extras
// policy. Pure function: no I/O, no hidden state. The computation order is
// fixed: line items, FODEC, shipping, stamp, grand total, withholding.
// An empty line-item set yields all-zero totals; negative quantities, prices
// or out-of-range rates are rejected with ErrInvalidInput.
func ComputeTotals(items []LineItem, policy ExtrasPolicy) (Totals, error) {
	if err := ValidateLineItems(items); err != nil {
		return Totals{}, err
	}
	if err := ValidateExtras(policy); err != nil {
		return Totals{}, err
	}

	var t Totals

	// Each line's tax is computed independently at its own rate, so mixed
	// tax rates across lines are supported.
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, item := range items {
		lineHT := round2(item.Quantity.Mul(item.UnitPrice))
		lineTax := round2(lineHT.Mul(item.TaxRate).Div(hundred))
		subtotal = subtotal.Add(lineHT)
		taxTotal = taxTotal.Add(lineTax)
	}
	t.Subtotal = round2(subtotal)
	t.TaxTotal = round2(taxTotal)
	t.SubtotalTTC = t.Subtotal.Add(t.TaxTotal)

	t.FodecHT = round2(decimal.Zero)
	t.FodecTTC = t.FodecHT
	if policy.Fodec.Enabled {
		t.FodecHT = round2(t.Subtotal.Mul(policy.Fodec.Rate).Div(hundred))
		fodecTax := round2(t.FodecHT.Mul(policy.Fodec.TaxRate).Div(hundred))
		t.FodecTTC = t.FodecHT.Add(fodecTax)
	}

	t.ShippingHT, t.ShippingTTC = flatExtra(policy.Shipping)
	t.StampHT, t.StampTTC = flatExtra(policy.Stamp)

	t.GrandTotalTTC = t.SubtotalTTC.
		Add(t.FodecTTC).
		Add(t.ShippingTTC).
		Add(t.StampTTC)

	// Withholding is computed last and never compounded into the extras.
	t.WithholdingAmount = round2(decimal.Zero)
	if policy.Withholding.Enabled {
		base := t.GrandTotalTTC
		if policy.Withholding.EffectiveBase() == WithholdingBaseExclusive {
			base = t.Subtotal.Add(t.FodecHT).Add(t.ShippingHT).Add(t.StampHT)
		}
		t.WithholdingAmount = round2(base.Mul(policy.Withholding.Rate).Div(hundred))
	}
	t.NetPayable = t.GrandTotalTTC.Sub(t.WithholdingAmount)

	return t, nil
}

func flatExtra(e AmountExtra) (ht, ttc decimal.Decimal) {
	if !e.Enabled {
		zero := round2(decimal.Zero)
		return zero, zero
	}
	ht = round2(e.Amount)
	tax := round2(ht.Mul(e.TaxRate).Div(hundred))
	return ht, ht.Add(tax)
}

// round2 rounds to the minor unit with round-half-to-even.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
