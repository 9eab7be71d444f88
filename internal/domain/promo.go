package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage off the eligible subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixedAmount takes a fixed amount off, capped at the eligible subtotal.
	DiscountFixedAmount DiscountType = "fixed_amount"
)

type PromoCode struct {
	ID                    int64
	Code                  string
	DiscountType          DiscountType
	DiscountValue         decimal.Decimal
	MinimumOrderAmount    *decimal.Decimal
	MaximumDiscountAmount *decimal.Decimal
	UsageLimit            *int
	UsageCount            int
	UsageLimitPerCustomer *int
	StartsAt              *time.Time
	ExpiresAt             *time.Time
	Active                bool
	AppliesToProducts     []int64
	AppliesToCategories   []int64
}

// Restricted reports whether the promo is scoped to specific products or categories.
func (p *PromoCode) Restricted() bool {
	return len(p.AppliesToProducts) > 0 || len(p.AppliesToCategories) > 0
}

// PromoCodeSnapshot is the frozen copy of a promo stored on an order,
// so later edits to the promo row cannot change what an order records.
type PromoCodeSnapshot struct {
	Code          string `json:"code"`
	DiscountType  string `json:"discount_type"`
	DiscountValue string `json:"discount_value"`
}
