package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// Resolver turns raw cart lines into priced, validated line items. Prices
// come from the catalog at resolution time; nothing supplied by the client
// is trusted beyond ids and quantities.
type Resolver struct {
	catalog catalog.Reader
}

func NewResolver(reader catalog.Reader) *Resolver {
	return &Resolver{catalog: reader}
}

// Resolve prices every input line and returns the items plus the cart
// subtotal. The subtotal is the rounded sum of the unrounded line totals
// (sum-then-round), so many small lines cannot accumulate rounding drift.
func (r *Resolver) Resolve(ctx context.Context, lines []domain.CartLineInput) ([]domain.ResolvedLineItem, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	items := make([]domain.ResolvedLineItem, 0, len(lines))
	rawSubtotal := decimal.Zero

	for _, line := range lines {
		item, raw, err := r.resolveLine(ctx, line)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, *item)
		rawSubtotal = rawSubtotal.Add(raw)
	}

	return items, domain.Round2(rawSubtotal), nil
}

func (r *Resolver) resolveLine(ctx context.Context, line domain.CartLineInput) (*domain.ResolvedLineItem, decimal.Decimal, error) {
	if line.Quantity <= 0 {
		return nil, decimal.Zero, &LineError{Kind: ErrInvalidQuantity, ProductID: line.ProductID, Requested: line.Quantity}
	}

	product, err := r.catalog.GetProduct(ctx, line.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, decimal.Zero, &LineError{Kind: ErrNotAvailable, ProductID: line.ProductID}
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("resolve product %d: %w", line.ProductID, err)
	}
	if !product.Active {
		return nil, decimal.Zero, &LineError{Kind: ErrNotAvailable, ProductID: product.ID, Name: product.Name}
	}

	unitPrice := product.Price
	effectiveStock := product.StockQuantity
	var variantSnap *domain.VariantSnapshot

	if line.VariantID != nil {
		variant, err := r.catalog.GetVariant(ctx, *line.VariantID)
		if errors.Is(err, catalog.ErrVariantNotFound) {
			return nil, decimal.Zero, &LineError{Kind: ErrNotAvailable, ProductID: product.ID, Name: product.Name}
		}
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("resolve variant %d: %w", *line.VariantID, err)
		}
		if !variant.Active || variant.ProductID != product.ID {
			return nil, decimal.Zero, &LineError{Kind: ErrNotAvailable, ProductID: product.ID, Name: product.Name}
		}
		unitPrice = variant.Price
		effectiveStock = variant.StockQuantity
		variantSnap = &domain.VariantSnapshot{
			Name:    variant.Name,
			SKU:     variant.SKU,
			Options: variant.Options,
		}
	}

	inStock := effectiveStock > 0 || product.AllowBackorder
	if !inStock {
		return nil, decimal.Zero, &LineError{
			Kind:      ErrOutOfStock,
			ProductID: product.ID,
			Name:      product.Name,
			Requested: line.Quantity,
			Available: effectiveStock,
		}
	}
	if line.Quantity > effectiveStock && !product.AllowBackorder {
		return nil, decimal.Zero, &LineError{
			Kind:      ErrInsufficientStock,
			ProductID: product.ID,
			Name:      product.Name,
			Requested: line.Quantity,
			Available: effectiveStock,
		}
	}

	raw := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	item := &domain.ResolvedLineItem{
		LineID:     lineID(line),
		ProductID:  product.ID,
		VariantID:  line.VariantID,
		CategoryID: product.CategoryID,
		UnitPrice:  unitPrice,
		Quantity:   line.Quantity,
		LineTotal:  domain.Round2(raw),
		Product: domain.ProductSnapshot{
			Name:          product.Name,
			SKU:           product.SKU,
			Thumbnail:     product.Thumbnail,
			StockQuantity: effectiveStock,
			InStock:       inStock,
		},
		Variant: variantSnap,
	}
	return item, raw, nil
}

// lineID keeps caller-supplied ids and otherwise derives a stable one, so
// identical inputs always produce identical calculations.
func lineID(line domain.CartLineInput) string {
	if line.LineID != "" {
		return line.LineID
	}
	if line.VariantID != nil {
		return fmt.Sprintf("%d:%d", line.ProductID, *line.VariantID)
	}
	return fmt.Sprintf("%d", line.ProductID)
}
