package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/checkout"
	"github.com/fjod/go_shop/internal/pricing"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// handleEngineError maps engine and order errors onto HTTP responses. The
// specific validation message (product name, available quantity) reaches the
// client; anything unexpected does not.
func handleEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, pricing.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, pricing.ErrNotAvailable):
		respondError(w, http.StatusBadRequest, "not_available", err.Error())
	case errors.Is(err, pricing.ErrOutOfStock):
		respondError(w, http.StatusBadRequest, "out_of_stock", err.Error())
	case errors.Is(err, pricing.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	case errors.Is(err, pricing.ErrPromoInvalid):
		respondError(w, http.StatusBadRequest, "promo_invalid", err.Error())
	case errors.Is(err, checkout.ErrStockConflict):
		respondError(w, http.StatusConflict, "stock_conflict", err.Error())
	case errors.Is(err, checkout.ErrPromoExhausted):
		respondError(w, http.StatusConflict, "promo_exhausted", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
