package checkout

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStockConflict means stock changed between pricing and the order
	// transaction's re-check; the caller should re-price and retry.
	ErrStockConflict = errors.New("stock changed during checkout")
	// ErrPromoExhausted means the promo usage limit was hit inside the
	// order transaction by a concurrent checkout.
	ErrPromoExhausted = errors.New("promo code usage limit reached")
	// ErrIllegalTransition means the requested status change is not a legal
	// lifecycle step.
	ErrIllegalTransition = errors.New("illegal order status transition")
)
