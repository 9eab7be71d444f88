package http

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockCartService implements CartService for testing
type MockCartService struct {
	Calc       *domain.CartCalculation
	Err        error
	AddedItem  *domain.CartItem
	LastPromo  string
	ClearedFor string
}

func (m *MockCartService) PriceCart(_ context.Context, _, promoCode string) (*domain.CartCalculation, error) {
	m.LastPromo = promoCode
	return m.Calc, m.Err
}

func (m *MockCartService) ApplyPromo(_ context.Context, _, promoCode string) (*domain.CartCalculation, error) {
	m.LastPromo = promoCode
	return m.Calc, m.Err
}

func (m *MockCartService) AddItem(_ context.Context, _ string, item domain.CartItem) error {
	m.AddedItem = &item
	return m.Err
}

func (m *MockCartService) UpdateQuantity(_ context.Context, _ string, _ int64, _ *int64, _ int) error {
	return m.Err
}

func (m *MockCartService) RemoveItem(_ context.Context, _ string, _ int64, _ *int64) error {
	return m.Err
}

func (m *MockCartService) ClearCart(_ context.Context, userID string) error {
	m.ClearedFor = userID
	return m.Err
}

// MockCalculator implements Calculator for testing
type MockCalculator struct {
	Calc      *domain.CartCalculation
	Err       error
	LastLines []domain.CartLineInput
}

func (m *MockCalculator) CalculateCart(_ context.Context, lines []domain.CartLineInput, _ string) (*domain.CartCalculation, error) {
	m.LastLines = lines
	return m.Calc, m.Err
}

// MockCheckoutService implements CheckoutService for testing
type MockCheckoutService struct {
	Order *domain.Order
	Quote *domain.Quotation
	Err   error
}

func (m *MockCheckoutService) PlaceOrder(_ context.Context, _ string, _ []domain.CartLineInput, _ string) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockCheckoutService) CreateQuotation(_ context.Context, _ string, _ []domain.CartLineInput, _ string) (*domain.Quotation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote, nil
}

// MockOrderService implements OrderService for testing
type MockOrderService struct {
	Order        *domain.Order
	Orders       []*domain.Order
	Err          error
	LastDiscount decimal.Decimal
	LastStatus   domain.OrderStatus
}

func (m *MockOrderService) PlaceAdminOrder(_ context.Context, _ string, _ []domain.CartLineInput, _ string, manualDiscount decimal.Decimal) (*domain.Order, error) {
	m.LastDiscount = manualDiscount
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockOrderService) GetOrder(_ context.Context, _ uuid.UUID) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Order, nil
}

func (m *MockOrderService) ListOrders(_ context.Context, _ string) ([]*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

func (m *MockOrderService) UpdateStatus(_ context.Context, _ uuid.UUID, next domain.OrderStatus) error {
	m.LastStatus = next
	return m.Err
}
