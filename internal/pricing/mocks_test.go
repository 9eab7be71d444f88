package pricing

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/promo"
	"github.com/shopspring/decimal"
)

// MockPromoRepository implements promo.Repository for testing
type MockPromoRepository struct {
	Promos         map[string]*domain.PromoCode
	GetErr         error
	IncrementedIDs []int64 // Captures ids passed to IncrementUsage
}

func (m *MockPromoRepository) GetByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.Promos[promo.NormalizeCode(code)]
	if !ok {
		return nil, promo.ErrCodeNotFound
	}
	return p, nil
}

func (m *MockPromoRepository) IncrementUsage(_ context.Context, id int64) error {
	m.IncrementedIDs = append(m.IncrementedIDs, id)
	return nil
}

// MockTaxReader implements TaxReader for testing
type MockTaxReader struct {
	Rate decimal.Decimal
	Err  error
}

func (m *MockTaxReader) TaxRate(_ context.Context) (decimal.Decimal, error) {
	return m.Rate, m.Err
}
