package cart

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// Calculator is the slice of the pricing engine the cart service needs.
type Calculator interface {
	CalculateCart(ctx context.Context, lines []domain.CartLineInput, promoCode string) (*domain.CartCalculation, error)
	ApplyPromo(ctx context.Context, lines []domain.CartLineInput, promoCode string) (*domain.CartCalculation, error)
}

type Service struct {
	repo Repository
	calc Calculator
}

func NewService(repo Repository, calc Calculator) *Service {
	return &Service{repo: repo, calc: calc}
}

// GetCart loads the saved cart, falling back to an empty cart for users
// without one.
func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// PriceCart reprices the saved cart through the engine. Pricing is never
// stored with the cart; every view recomputes from current catalog state.
func (s *Service) PriceCart(ctx context.Context, userID, promoCode string) (*domain.CartCalculation, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.calc.CalculateCart(ctx, cart.Lines(), promoCode)
}

// ApplyPromo reprices the saved cart with loud promo errors, for the
// dedicated apply-promo endpoint.
func (s *Service) ApplyPromo(ctx context.Context, userID, promoCode string) (*domain.CartCalculation, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.calc.ApplyPromo(ctx, cart.Lines(), promoCode)
}

// AddItem merges the quantity into an existing line for the same product and
// variant, or appends a new line.
func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID && sameVariant(cart.Items[i].VariantID, item.VariantID) {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		item.AddedAt = time.Now().UTC()
		cart.Items = append(cart.Items, item)
	}
	return s.repo.UpsertCart(ctx, cart)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, variantID *int64, quantity int) error {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && sameVariant(cart.Items[i].VariantID, variantID) {
			cart.Items[i].Quantity = quantity
			return s.repo.UpsertCart(ctx, cart)
		}
	}
	return ErrCartNotFound
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64, variantID *int64) error {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	for i, item := range cart.Items {
		if item.ProductID == productID && sameVariant(item.VariantID, variantID) {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.repo.UpsertCart(ctx, cart)
		}
	}
	return ErrCartNotFound
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	return s.repo.DeleteCart(ctx, userID)
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
