package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

// CheckoutService is what the checkout and quotation endpoints need from
// internal/checkout.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string) (*domain.Order, error)
	CreateQuotation(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string) (*domain.Quotation, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout}
}

type CheckoutRequestDTO struct {
	Lines     []domain.CartLineInput `json:"lines"`
	PromoCode string                 `json:"promo_code,omitempty"`
}

// PlaceOrder creates an order with totals frozen at this moment. Promo
// failures degrade to no discount, same as the cart view; stock problems are
// hard errors.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "at least one line is required")
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, userID, req.Lines, req.PromoCode)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// CreateQuotation prices the lines into a persisted quotation without
// touching stock or promo usage.
func (h *CheckoutHandler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "at least one line is required")
		return
	}

	quotation, err := h.checkout.CreateQuotation(ctx, userID, req.Lines, req.PromoCode)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quotation)
}
