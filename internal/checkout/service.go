package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationValidity is how long a quotation's frozen pricing stays open.
const QuotationValidity = 30 * 24 * time.Hour

// Engine is the slice of the pricing engine order creation depends on. Using
// the same engine as the live cart view keeps checkout and cart arithmetic
// identical by construction.
type Engine interface {
	CalculateOrderTotals(ctx context.Context, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.OrderTotalsSnapshot, *domain.CartCalculation, error)
}

type Service struct {
	engine Engine
	repo   RepoInterface
}

func NewService(engine Engine, repo RepoInterface) *Service {
	return &Service{engine: engine, repo: repo}
}

// PlaceOrder prices the lines and freezes the result onto a new pending
// order. The totals snapshot is written once here and never recomputed, no
// matter what happens to catalog prices or promo state later.
func (s *Service) PlaceOrder(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string) (*domain.Order, error) {
	return s.createOrder(ctx, userID, lines, promoCode, decimal.Zero)
}

// PlaceAdminOrder is the admin-created order path: an extra manual discount
// is applied after the promo discount and before tax, then the snapshot is
// frozen exactly once like any other order.
func (s *Service) PlaceAdminOrder(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.Order, error) {
	if manualDiscount.IsNegative() {
		return nil, fmt.Errorf("manual discount must not be negative")
	}
	return s.createOrder(ctx, userID, lines, promoCode, manualDiscount)
}

func (s *Service) createOrder(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.Order, error) {
	snap, calc, err := s.engine.CalculateOrderTotals(ctx, lines, promoCode, manualDiscount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Items:     orderItems(calc.Items),
		Totals:    *snap,
		Currency:  calc.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateQuotation prices the lines with the same engine and freezes the
// result onto a quotation. Promo ineligibility is not rejected here; a
// restricted promo matching nothing simply yields a zero discount.
func (s *Service) CreateQuotation(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string) (*domain.Quotation, error) {
	snap, calc, err := s.engine.CalculateOrderTotals(ctx, lines, promoCode, decimal.Zero)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := &domain.Quotation{
		ID:         uuid.New(),
		UserID:     userID,
		Items:      orderItems(calc.Items),
		Totals:     *snap,
		Currency:   calc.Currency,
		ValidUntil: now.Add(QuotationValidity),
		CreatedAt:  now,
	}

	if err := s.repo.CreateQuotation(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersByUserID(ctx, userID)
}

// UpdateStatus moves an order along the lifecycle. Cancellation goes through
// Cancel so stock restoration cannot be skipped.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error {
	if next == domain.OrderStatusCancelled {
		_, err := s.Cancel(ctx, id)
		return err
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, next)
	}
	return s.repo.UpdateOrderStatus(ctx, id, order.Status, next)
}

// Cancel flips an order to cancelled, restoring stock. The totals snapshot
// stays untouched; it remains the record of what the customer was charged.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.CancelOrder(ctx, id)
}

func orderItems(items []domain.ResolvedLineItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		sku := item.Product.SKU
		if item.Variant != nil {
			sku = item.Variant.SKU
		}
		out = append(out, domain.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			SKU:         sku,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return out
}
