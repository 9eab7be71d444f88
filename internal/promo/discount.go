package promo

import (
	"errors"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrUnknownDiscountType means the promo row carries a discount type the
// engine has no mapping for. That is a data-model mismatch, not a user error.
var ErrUnknownDiscountType = errors.New("unknown discount type")

var hundred = decimal.NewFromInt(100)

// DiscountItem is the slice of a resolved cart line the eligibility filter
// needs: identity for scoping and the line total for the money math.
type DiscountItem struct {
	LineID     string
	ProductID  int64
	CategoryID int64
	LineTotal  decimal.Decimal
}

// Discount is the result of applying a validated promo to a set of items.
// Zero eligible items yields a zero amount, not an error; whether that is
// acceptable is the caller's policy.
type Discount struct {
	Amount          decimal.Decimal
	EligibleItemIDs []string
}

// ComputeDiscount filters items down to the ones the promo is scoped to and
// computes the discount amount against the eligible subtotal. The amount is
// capped by MaximumDiscountAmount when set and always clamped so it never
// exceeds the eligible subtotal.
func ComputeDiscount(p *domain.PromoCode, items []DiscountItem) (Discount, error) {
	var eligibleIDs []string
	eligibleSubtotal := decimal.Zero
	for _, item := range items {
		if !eligible(p, item) {
			continue
		}
		eligibleIDs = append(eligibleIDs, item.LineID)
		eligibleSubtotal = eligibleSubtotal.Add(item.LineTotal)
	}
	eligibleSubtotal = domain.Round2(eligibleSubtotal)

	if len(eligibleIDs) == 0 {
		return Discount{Amount: decimal.Zero}, nil
	}

	var amount decimal.Decimal
	switch p.DiscountType {
	case domain.DiscountPercentage:
		amount = eligibleSubtotal.Mul(p.DiscountValue.Div(hundred))
	case domain.DiscountFixedAmount:
		amount = decimal.Min(p.DiscountValue, eligibleSubtotal)
	default:
		return Discount{}, ErrUnknownDiscountType
	}

	if p.MaximumDiscountAmount != nil {
		amount = decimal.Min(amount, *p.MaximumDiscountAmount)
	}
	amount = decimal.Min(amount, eligibleSubtotal)

	return Discount{
		Amount:          domain.Round2(amount),
		EligibleItemIDs: eligibleIDs,
	}, nil
}

func eligible(p *domain.PromoCode, item DiscountItem) bool {
	if !p.Restricted() {
		return true
	}
	for _, id := range p.AppliesToProducts {
		if id == item.ProductID {
			return true
		}
	}
	for _, id := range p.AppliesToCategories {
		if id == item.CategoryID {
			return true
		}
	}
	return false
}
