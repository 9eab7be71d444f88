package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// transitions is the full order lifecycle. Cancellation is allowed only
// before shipment.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionTo reports whether the status change is a legal lifecycle step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	VariantID   *int64          `json:"variant_id,omitempty"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderTotalsSnapshot freezes the money an order was charged. Amounts are
// fixed two-decimal strings copied from a CartCalculation at creation time
// and never recomputed from catalog or promo state afterwards.
type OrderTotalsSnapshot struct {
	Subtotal          string             `json:"subtotal"`
	TaxRate           string             `json:"tax_rate"`
	TaxAmount         string             `json:"tax_amount"`
	ShippingAmount    string             `json:"shipping_amount"`
	DiscountAmount    string             `json:"discount_amount"`
	Total             string             `json:"total"`
	PromoCodeID       *int64             `json:"promo_code_id,omitempty"`
	PromoCodeSnapshot *PromoCodeSnapshot `json:"promo_code_snapshot,omitempty"`
}

type Order struct {
	ID        uuid.UUID           `json:"id"`
	UserID    string              `json:"user_id"`
	Status    OrderStatus         `json:"status"`
	Items     []OrderItem         `json:"items"`
	Totals    OrderTotalsSnapshot `json:"totals"`
	Currency  string              `json:"currency"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Quotation is a priced offer built with the same engine as orders. Its
// totals are frozen the same way but it never touches stock or promo usage.
type Quotation struct {
	ID         uuid.UUID           `json:"id"`
	UserID     string              `json:"user_id"`
	Items      []OrderItem         `json:"items"`
	Totals     OrderTotalsSnapshot `json:"totals"`
	Currency   string              `json:"currency"`
	ValidUntil time.Time           `json:"valid_until"`
	CreatedAt  time.Time           `json:"created_at"`
}
