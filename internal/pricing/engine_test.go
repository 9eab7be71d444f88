package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/promo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestEngine(store *catalog.MemoryStore, promos *MockPromoRepository, taxRate, shipping string) *Engine {
	return NewEngine(store, promos, &MockTaxReader{Rate: dec(taxRate)}, Config{
		ShippingFlatRate: dec(shipping),
		Currency:         "USD",
	})
}

func seedProduct(store *catalog.MemoryStore, id int64, price string, stock int) {
	store.PutProduct(&domain.Product{
		ID:            id,
		SKU:           "SKU-1",
		Name:          "Widget",
		CategoryID:    10,
		Price:         dec(price),
		StockQuantity: stock,
		Active:        true,
	})
}

func TestCalculateCart_SingleItemNoPromo(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "19.99", 10)
	engine := newTestEngine(store, &MockPromoRepository{}, "0.10", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 3},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "59.97", calc.Subtotal.StringFixed(2))
	assert.True(t, calc.DiscountAmount.IsZero())
	assert.Equal(t, "6.00", calc.TaxAmount.StringFixed(2))
	assert.Equal(t, "65.97", calc.Total.StringFixed(2))
	assert.Equal(t, 3, calc.ItemCount)
	assert.Equal(t, "USD", calc.Currency)
}

func TestCalculateCart_PercentagePromoWithCap(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "200.00", 10)
	maxDiscount := dec("30.00")
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"SAVE20": {
			ID:                    7,
			Code:                  "SAVE20",
			DiscountType:          domain.DiscountPercentage,
			DiscountValue:         dec("20"),
			MaximumDiscountAmount: &maxDiscount,
			Active:                true,
		},
	}}
	engine := newTestEngine(store, promos, "0", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "SAVE20")

	require.NoError(t, err)
	// 20% of 200.00 is 40.00, capped at 30.00
	assert.Equal(t, "30.00", calc.DiscountAmount.StringFixed(2))
	assert.Equal(t, "170.00", calc.Total.StringFixed(2))
	assert.Equal(t, "SAVE20", calc.PromoCode)
	require.NotNil(t, calc.PromoCodeID)
	assert.Equal(t, int64(7), *calc.PromoCodeID)
}

func TestCalculateCart_FixedPromoClampedToSubtotal(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "35.00", 10)
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"TAKE50": {
			ID:            2,
			Code:          "TAKE50",
			DiscountType:  domain.DiscountFixedAmount,
			DiscountValue: dec("50.00"),
			Active:        true,
		},
	}}
	engine := newTestEngine(store, promos, "0.10", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "TAKE50")

	require.NoError(t, err)
	assert.Equal(t, "35.00", calc.DiscountAmount.StringFixed(2))
	assert.True(t, calc.TaxAmount.IsZero())
	assert.True(t, calc.Total.IsZero())
}

func TestCalculateCart_RestrictedPromoZeroEligibleItems(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.PutProduct(&domain.Product{
		ID:            1,
		Name:          "Mug",
		CategoryID:    20,
		Price:         dec("12.00"),
		StockQuantity: 5,
		Active:        true,
	})
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"CAT10": {
			ID:                  3,
			Code:                "CAT10",
			DiscountType:        domain.DiscountPercentage,
			DiscountValue:       dec("10"),
			Active:              true,
			AppliesToCategories: []int64{99},
		},
	}}
	engine := newTestEngine(store, promos, "0", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "CAT10")

	require.NoError(t, err)
	// Promo is recorded but discounts nothing.
	assert.Equal(t, "CAT10", calc.PromoCode)
	assert.True(t, calc.DiscountAmount.IsZero())
	assert.Empty(t, calc.EligibleItemIDs)
}

func TestApplyPromo_RestrictedPromoZeroEligibleItemsRejected(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.PutProduct(&domain.Product{
		ID:            1,
		Name:          "Mug",
		CategoryID:    20,
		Price:         dec("12.00"),
		StockQuantity: 5,
		Active:        true,
	})
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"CAT10": {
			ID:                  3,
			Code:                "CAT10",
			DiscountType:        domain.DiscountPercentage,
			DiscountValue:       dec("10"),
			Active:              true,
			AppliesToCategories: []int64{99},
		},
	}}
	engine := newTestEngine(store, promos, "0", "0")

	_, err := engine.ApplyPromo(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "CAT10")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromoInvalid)
	var promoErr *PromoError
	require.ErrorAs(t, err, &promoErr)
	assert.Equal(t, promo.ReasonNotApplicable, promoErr.Reason)
}

func TestApplyPromo_UnknownCodeRejected(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "10.00", 5)
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	_, err := engine.ApplyPromo(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "NOPE")

	require.Error(t, err)
	var promoErr *PromoError
	require.ErrorAs(t, err, &promoErr)
	assert.Equal(t, promo.ReasonNotFound, promoErr.Reason)
}

func TestCalculateCart_UnknownCodeIgnored(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "10.00", 5)
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "NOPE")

	require.NoError(t, err)
	assert.True(t, calc.DiscountAmount.IsZero())
	assert.Empty(t, calc.PromoCode)
}

func TestCalculateCart_InsufficientStockNoBackorder(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.PutProduct(&domain.Product{
		ID:            1,
		Name:          "Widget",
		Price:         dec("10.00"),
		StockQuantity: 2,
		Active:        true,
	})
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	_, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 5},
	}, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, 2, lineErr.Available)
	assert.Equal(t, "Not enough stock for Widget. Available: 2", lineErr.Error())
}

func TestCalculateCart_BackorderAllowsOverselling(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.PutProduct(&domain.Product{
		ID:             1,
		Name:           "Widget",
		Price:          dec("10.00"),
		StockQuantity:  0,
		AllowBackorder: true,
		Active:         true,
	})
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 5},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "50.00", calc.Subtotal.StringFixed(2))
}

func TestCalculateCart_TaxDisabled(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "99.99", 10)
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "5.00")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 2},
	}, "")

	require.NoError(t, err)
	assert.True(t, calc.TaxRate.IsZero())
	assert.True(t, calc.TaxAmount.IsZero())
	assert.Equal(t, "204.98", calc.Total.StringFixed(2))
}

func TestCalculateCart_SumThenRound(t *testing.T) {
	store := catalog.NewMemoryStore()
	// Each line total is 0.005 raw; three lines sum to 0.015 which rounds to
	// 0.02. Independently-rounded lines would give 3 * 0.01 = 0.03.
	store.PutProduct(&domain.Product{ID: 1, Price: dec("0.005"), StockQuantity: 10, Active: true})
	store.PutProduct(&domain.Product{ID: 2, Price: dec("0.005"), StockQuantity: 10, Active: true})
	store.PutProduct(&domain.Product{ID: 3, Price: dec("0.005"), StockQuantity: 10, Active: true})
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "0.02", calc.Subtotal.StringFixed(2))
}

func TestCalculateCart_Idempotent(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "19.99", 10)
	minOrder := dec("10.00")
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"SAVE5": {
			ID:                 4,
			Code:               "SAVE5",
			DiscountType:       domain.DiscountFixedAmount,
			DiscountValue:      dec("5.00"),
			MinimumOrderAmount: &minOrder,
			Active:             true,
		},
	}}
	engine := newTestEngine(store, promos, "0.08", "4.99")
	lines := []domain.CartLineInput{{ProductID: 1, Quantity: 2}}

	first, err := engine.CalculateCart(context.Background(), lines, "SAVE5")
	require.NoError(t, err)
	second, err := engine.CalculateCart(context.Background(), lines, "SAVE5")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, promos.IncrementedIDs, "calculation must never advance usage counters")
}

func TestCalculateCart_EmptyCart(t *testing.T) {
	engine := newTestEngine(catalog.NewMemoryStore(), &MockPromoRepository{}, "0", "0")

	_, err := engine.CalculateCart(context.Background(), nil, "")

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCalculateCart_InactiveProduct(t *testing.T) {
	store := catalog.NewMemoryStore()
	store.PutProduct(&domain.Product{ID: 1, Name: "Old", Price: dec("10.00"), StockQuantity: 5, Active: false})
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	_, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "")

	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestCalculateCart_TaxReaderError(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "10.00", 5)
	engine := NewEngine(store, &MockPromoRepository{}, &MockTaxReader{Err: errors.New("settings down")}, Config{Currency: "USD"})

	_, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tax rate")
}

func TestCalculateOrderTotals_SnapshotShape(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "19.99", 10)
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"SAVE10": {
			ID:            5,
			Code:          "SAVE10",
			DiscountType:  domain.DiscountPercentage,
			DiscountValue: dec("10"),
			Active:        true,
		},
	}}
	engine := newTestEngine(store, promos, "0.10", "4.99")

	snap, calc, err := engine.CalculateOrderTotals(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 3},
	}, "SAVE10", decimal.Zero)

	require.NoError(t, err)
	require.NotNil(t, calc)
	assert.Equal(t, "59.97", snap.Subtotal)
	assert.Equal(t, "6.00", snap.DiscountAmount) // 10% of 59.97 rounded
	assert.Equal(t, "5.40", snap.TaxAmount)      // (59.97 - 6.00) * 0.10 = 5.397
	assert.Equal(t, "4.99", snap.ShippingAmount)
	assert.Equal(t, "64.36", snap.Total)
	require.NotNil(t, snap.PromoCodeSnapshot)
	assert.Equal(t, "SAVE10", snap.PromoCodeSnapshot.Code)
	assert.Equal(t, "percentage", snap.PromoCodeSnapshot.DiscountType)
}

func TestCalculateOrderTotals_ManualDiscountClamped(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "30.00", 10)
	engine := newTestEngine(store, &MockPromoRepository{}, "0", "0")

	snap, calc, err := engine.CalculateOrderTotals(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "", dec("100.00"))

	require.NoError(t, err)
	assert.Equal(t, "30.00", snap.DiscountAmount)
	assert.Equal(t, "0.00", snap.Total)
	assert.False(t, calc.Total.IsNegative())
}

func TestCalculateCart_DiscountNeverExceedsSubtotal(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(store, 1, "9.99", 10)
	promos := &MockPromoRepository{Promos: map[string]*domain.PromoCode{
		"BIG": {
			ID:            6,
			Code:          "BIG",
			DiscountType:  domain.DiscountFixedAmount,
			DiscountValue: dec("999.00"),
			Active:        true,
		},
	}}
	engine := newTestEngine(store, promos, "0.10", "2.50")

	calc, err := engine.CalculateCart(context.Background(), []domain.CartLineInput{
		{ProductID: 1, Quantity: 1},
	}, "BIG")

	require.NoError(t, err)
	assert.True(t, calc.DiscountAmount.LessThanOrEqual(calc.Subtotal))
	assert.Equal(t, "2.50", calc.Total.StringFixed(2), "shipping still charged on a fully discounted cart")
}
