package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int64
	SKU            string
	Name           string
	Description    string
	CategoryID     int64
	Price          decimal.Decimal
	Thumbnail      string
	StockQuantity  int
	AllowBackorder bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ProductVariant struct {
	ID            int64
	ProductID     int64
	SKU           string
	Name          string
	Options       map[string]string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
}
