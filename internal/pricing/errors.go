package pricing

import (
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/promo"
)

var (
	// ErrNotAvailable means the product or variant is missing or inactive.
	ErrNotAvailable = errors.New("item not available")
	// ErrOutOfStock means the item has no stock and backorder is not allowed.
	ErrOutOfStock = errors.New("item out of stock")
	// ErrInsufficientStock means stock exists but not enough for the
	// requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPromoInvalid is raised only at the apply-promo call site; cart
	// calculation treats the same conditions as "no discount".
	ErrPromoInvalid = errors.New("promo code invalid")
	// ErrEmptyCart means there are no lines to price.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity means a line quantity is zero or negative.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// LineError wraps a per-line resolution failure with enough context for a
// user-facing message. Unwrap exposes the sentinel for errors.Is checks at
// the route boundary.
type LineError struct {
	Kind      error
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *LineError) Error() string {
	switch e.Kind {
	case ErrOutOfStock:
		return fmt.Sprintf("%s is out of stock", e.name())
	case ErrInsufficientStock:
		return fmt.Sprintf("Not enough stock for %s. Available: %d", e.name(), e.Available)
	case ErrInvalidQuantity:
		return fmt.Sprintf("invalid quantity %d for %s", e.Requested, e.name())
	default:
		return fmt.Sprintf("%s is not available", e.name())
	}
}

func (e *LineError) Unwrap() error {
	return e.Kind
}

func (e *LineError) name() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("product %d", e.ProductID)
}

// PromoError carries the rejection reason for the apply-promo call site.
type PromoError struct {
	Code   string
	Reason promo.Reason
}

func (e *PromoError) Error() string {
	return fmt.Sprintf("promo code %q rejected: %s", e.Code, e.Reason)
}

func (e *PromoError) Unwrap() error {
	return ErrPromoInvalid
}
