package domain

import "github.com/shopspring/decimal"

// CartCalculation is the priced view of a set of cart lines. It is ephemeral:
// recomputed on every request, never the system of record.
type CartCalculation struct {
	Items           []ResolvedLineItem `json:"items"`
	ItemCount       int                `json:"item_count"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	ShippingAmount  decimal.Decimal    `json:"shipping_amount"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	PromoCode       string             `json:"promo_code,omitempty"`
	PromoCodeID     *int64             `json:"promo_code_id,omitempty"`
	EligibleItemIDs []string           `json:"eligible_item_ids,omitempty"`
	Total           decimal.Decimal    `json:"total"`
	Currency        string             `json:"currency"`
}

// Round2 rounds a monetary value to two decimal places, half up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
