package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineInput is the caller-supplied shape of one cart line. Only ids and
// quantity are trusted; prices are always re-read from the catalog.
type CartLineInput struct {
	LineID    string `json:"line_id,omitempty"`
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type ProductSnapshot struct {
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	StockQuantity int    `json:"stock_quantity"`
	InStock       bool   `json:"in_stock"`
}

type VariantSnapshot struct {
	Name    string            `json:"name"`
	SKU     string            `json:"sku"`
	Options map[string]string `json:"options,omitempty"`
}

// ResolvedLineItem is a cart line after catalog lookup: validated, priced
// server-side and annotated with product data for display. Built fresh on
// every calculation, never persisted standalone.
type ResolvedLineItem struct {
	LineID     string           `json:"line_id"`
	ProductID  int64            `json:"product_id"`
	VariantID  *int64           `json:"variant_id,omitempty"`
	CategoryID int64            `json:"category_id"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	Quantity   int              `json:"quantity"`
	LineTotal  decimal.Decimal  `json:"line_total"`
	Product    ProductSnapshot  `json:"product"`
	Variant    *VariantSnapshot `json:"variant,omitempty"`
}

// Cart is a saved cart. Pricing is not stored with it; the engine recomputes
// on every read.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `json:"product_id"`
	VariantID *int64    `json:"variant_id,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Lines converts saved cart items into calculation inputs.
func (c *Cart) Lines() []CartLineInput {
	lines := make([]CartLineInput, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, CartLineInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
