package pricing

import (
	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals is the output of the final money math for one calculation.
type Totals struct {
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals combines subtotal, discount, tax rate and shipping. Tax is
// charged on the post-discount amount (discount before tax). The rate is an
// explicit argument: callers take one tax snapshot per logical operation so a
// mid-checkout settings change cannot produce inconsistent subtotal/tax pairs.
func ComputeTotals(subtotal, discountAmount, taxRate, shippingAmount decimal.Decimal) Totals {
	taxable := subtotal.Sub(discountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	taxAmount := domain.Round2(taxable.Mul(taxRate))
	total := domain.Round2(taxable.Add(taxAmount).Add(shippingAmount))
	return Totals{
		TaxableAmount: taxable,
		TaxAmount:     taxAmount,
		Total:         total,
	}
}
