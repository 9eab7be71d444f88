package checkout

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockEngine implements Engine for testing
type MockEngine struct {
	Snap         *domain.OrderTotalsSnapshot
	Calc         *domain.CartCalculation
	Err          error
	LastPromo    string
	LastDiscount decimal.Decimal
}

func (m *MockEngine) CalculateOrderTotals(_ context.Context, _ []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.OrderTotalsSnapshot, *domain.CartCalculation, error) {
	m.LastPromo = promoCode
	m.LastDiscount = manualDiscount
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Snap, m.Calc, nil
}

// MockRepository implements RepoInterface for testing
type MockRepository struct {
	Order           *domain.Order
	GetErr          error
	CreateErr       error
	CreatedOrder    *domain.Order     // Captures the order passed to CreateOrder
	CreatedQuote    *domain.Quotation // Captures the quotation passed to CreateQuotation
	StatusFrom      domain.OrderStatus
	StatusTo        domain.OrderStatus
	CancelledID     uuid.UUID
	CancelledResult *domain.Order
	CancelErr       error
}

func (m *MockRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.CreatedOrder = order
	return m.CreateErr
}

func (m *MockRepository) GetOrderByID(_ context.Context, _ uuid.UUID) (*domain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Order, nil
}

func (m *MockRepository) ListOrdersByUserID(_ context.Context, _ string) ([]*domain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.Order == nil {
		return nil, nil
	}
	return []*domain.Order{m.Order}, nil
}

func (m *MockRepository) UpdateOrderStatus(_ context.Context, _ uuid.UUID, from, to domain.OrderStatus) error {
	m.StatusFrom = from
	m.StatusTo = to
	return nil
}

func (m *MockRepository) CancelOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.CancelledID = id
	if m.CancelErr != nil {
		return nil, m.CancelErr
	}
	return m.CancelledResult, nil
}

func (m *MockRepository) CreateQuotation(_ context.Context, q *domain.Quotation) error {
	m.CreatedQuote = q
	return nil
}

func (m *MockRepository) GetUnpublishedEvents(_ context.Context, _ int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (m *MockRepository) MarkEventPublished(_ context.Context, _ int64) error {
	return nil
}
