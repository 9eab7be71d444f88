package pricing

import (
	"context"
	"fmt"
	"log"

	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/promo"
	"github.com/shopspring/decimal"
)

// TaxReader supplies the configured tax rate. Implementations return zero
// when taxation is disabled or unconfigured.
type TaxReader interface {
	TaxRate(ctx context.Context) (decimal.Decimal, error)
}

// Config holds the per-deployment pricing knobs.
type Config struct {
	ShippingFlatRate decimal.Decimal
	Currency         string
}

// Engine prices carts. The same arithmetic serves the live cart view,
// checkout order creation and admin-created orders, so the three call sites
// can never disagree on a total.
type Engine struct {
	resolver  *Resolver
	validator *promo.Validator
	tax       TaxReader
	cfg       Config
}

func NewEngine(reader catalog.Reader, promos promo.Repository, tax TaxReader, cfg Config) *Engine {
	return &Engine{
		resolver:  NewResolver(reader),
		validator: promo.NewValidator(promos),
		tax:       tax,
		cfg:       cfg,
	}
}

// CalculateCart prices the given lines. A missing, invalid or ineligible
// promo code degrades to "no discount"; only unresolvable lines fail the
// call.
func (e *Engine) CalculateCart(ctx context.Context, lines []domain.CartLineInput, promoCode string) (*domain.CartCalculation, error) {
	calc, _, err := e.calculate(ctx, lines, promoCode, decimal.Zero, false)
	return calc, err
}

// ApplyPromo prices the given lines and surfaces promo failures as errors,
// including a restricted promo matching none of the items. This is the one
// call site where an invalid code is loud.
func (e *Engine) ApplyPromo(ctx context.Context, lines []domain.CartLineInput, promoCode string) (*domain.CartCalculation, error) {
	calc, _, err := e.calculate(ctx, lines, promoCode, decimal.Zero, true)
	return calc, err
}

// CalculateOrderTotals runs the same calculation shaped for persistence.
// manualDiscount is the admin-only extra discount, applied after the promo
// discount and before tax; pass zero elsewhere.
func (e *Engine) CalculateOrderTotals(ctx context.Context, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.OrderTotalsSnapshot, *domain.CartCalculation, error) {
	calc, applied, err := e.calculate(ctx, lines, promoCode, manualDiscount, false)
	if err != nil {
		return nil, nil, err
	}
	return BuildSnapshot(calc, applied), calc, nil
}

func (e *Engine) calculate(ctx context.Context, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal, strictPromo bool) (*domain.CartCalculation, *domain.PromoCode, error) {
	items, subtotal, err := e.resolver.Resolve(ctx, lines)
	if err != nil {
		return nil, nil, err
	}

	taxRate, err := e.tax.TaxRate(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read tax rate: %w", err)
	}

	calc := &domain.CartCalculation{
		Items:          items,
		Subtotal:       subtotal,
		TaxRate:        taxRate,
		ShippingAmount: e.cfg.ShippingFlatRate,
		DiscountAmount: decimal.Zero,
		Currency:       e.cfg.Currency,
	}
	for _, item := range items {
		calc.ItemCount += item.Quantity
	}

	var applied *domain.PromoCode
	if promoCode != "" {
		applied, err = e.applyPromoCode(ctx, calc, promoCode, strictPromo)
		if err != nil {
			return nil, nil, err
		}
	}

	discount := calc.DiscountAmount.Add(manualDiscount)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	calc.DiscountAmount = discount

	totals := ComputeTotals(subtotal, discount, taxRate, calc.ShippingAmount)
	calc.TaxAmount = totals.TaxAmount
	calc.Total = totals.Total
	return calc, applied, nil
}

func (e *Engine) applyPromoCode(ctx context.Context, calc *domain.CartCalculation, code string, strict bool) (*domain.PromoCode, error) {
	res, err := e.validator.Resolve(ctx, code, calc.Subtotal)
	if err != nil {
		return nil, err
	}
	if !res.Applied() {
		if strict {
			return nil, &PromoError{Code: code, Reason: res.Reason}
		}
		log.Printf("ignoring promo code %q: %s", code, res.Reason)
		return nil, nil
	}

	discount, err := promo.ComputeDiscount(res.Promo, discountItems(calc.Items))
	if err != nil {
		return nil, fmt.Errorf("compute discount for %q: %w", code, err)
	}
	if strict && res.Promo.Restricted() && len(discount.EligibleItemIDs) == 0 {
		return nil, &PromoError{Code: code, Reason: promo.ReasonNotApplicable}
	}

	calc.PromoCode = res.Promo.Code
	calc.PromoCodeID = &res.Promo.ID
	calc.EligibleItemIDs = discount.EligibleItemIDs
	calc.DiscountAmount = discount.Amount
	return res.Promo, nil
}

func discountItems(items []domain.ResolvedLineItem) []promo.DiscountItem {
	out := make([]promo.DiscountItem, 0, len(items))
	for _, item := range items {
		out = append(out, promo.DiscountItem{
			LineID:     item.LineID,
			ProductID:  item.ProductID,
			CategoryID: item.CategoryID,
			LineTotal:  item.LineTotal,
		})
	}
	return out
}

// BuildSnapshot freezes a calculation onto the shape persisted with an
// order. It is a pure copy: amounts become fixed two-decimal strings and are
// never recomputed from catalog or promo state afterwards.
func BuildSnapshot(calc *domain.CartCalculation, applied *domain.PromoCode) *domain.OrderTotalsSnapshot {
	snap := &domain.OrderTotalsSnapshot{
		Subtotal:       calc.Subtotal.StringFixed(2),
		TaxRate:        calc.TaxRate.String(),
		TaxAmount:      calc.TaxAmount.StringFixed(2),
		ShippingAmount: calc.ShippingAmount.StringFixed(2),
		DiscountAmount: calc.DiscountAmount.StringFixed(2),
		Total:          calc.Total.StringFixed(2),
		PromoCodeID:    calc.PromoCodeID,
	}
	if applied != nil {
		snap.PromoCodeSnapshot = &domain.PromoCodeSnapshot{
			Code:          applied.Code,
			DiscountType:  string(applied.DiscountType),
			DiscountValue: applied.DiscountValue.String(),
		}
	}
	return snap
}
