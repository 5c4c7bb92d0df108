package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/api/internal/enum"
)

// Totals is derived state: recomputed from the full line set on every
// mutation, never patched incrementally.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TipAmount      decimal.Decimal
	GrandTotal     decimal.Decimal

	// DiscountClamped flags that the configured discount exceeded what the
	// order could absorb and was reduced to keep the grand total at zero.
	// Callers log it as a data-quality condition.
	DiscountClamped bool
}

// ComputeTotals derives all four monetary aggregates from the current lines
// and header fields. Cancelled lines are excluded; an empty line set yields
// zero totals. All arithmetic is exact decimal; rounding to two places
// happens only when amounts are rendered or stored.
func ComputeTotals(lines []Line, taxRate, discountAmount, tipAmount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Status == enum.LineStatusCancelled {
			continue
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}

	taxAmount := subtotal.Mul(taxRate)
	gross := subtotal.Add(taxAmount).Add(tipAmount)

	applied := discountAmount
	clamped := false
	if applied.GreaterThan(gross) {
		applied = gross
		clamped = true
	}

	return Totals{
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		DiscountAmount:  applied,
		TipAmount:       tipAmount,
		GrandTotal:      gross.Sub(applied),
		DiscountClamped: clamped,
	}
}
