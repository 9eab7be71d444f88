package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService is what the order endpoints need from internal/checkout.
type OrderService interface {
	PlaceAdminOrder(ctx context.Context, userID string, lines []domain.CartLineInput, promoCode string, manualDiscount decimal.Decimal) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) error
}

type OrdersHandler struct {
	orders  OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type AdminOrderRequestDTO struct {
	UserID         string                 `json:"user_id"`
	Lines          []domain.CartLineInput `json:"lines"`
	PromoCode      string                 `json:"promo_code,omitempty"`
	ManualDiscount string                 `json:"manual_discount,omitempty"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrders(ctx, userID)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// CreateAdminOrder places an order on behalf of a customer. The manual
// discount is applied after any promo discount and before tax, then the
// totals are frozen exactly once like a regular checkout.
func (h *OrdersHandler) CreateAdminOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AdminOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	if len(req.Lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "at least one line is required")
		return
	}

	manualDiscount := decimal.Zero
	if req.ManualDiscount != "" {
		var err error
		manualDiscount, err = decimal.NewFromString(req.ManualDiscount)
		if err != nil || manualDiscount.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid_discount", "manual_discount must be a non-negative amount")
			return
		}
	}

	order, err := h.orders.PlaceAdminOrder(ctx, req.UserID, req.Lines, req.PromoCode, manualDiscount)
	if err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// UpdateStatus moves an order along the lifecycle. Cancelling restores
// stock; it never rewrites the frozen totals.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	next := domain.OrderStatus(req.Status)
	switch next {
	case domain.OrderStatusConfirmed, domain.OrderStatusProcessing,
		domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled:
	default:
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	if err := h.orders.UpdateStatus(ctx, id, next); err != nil {
		handleEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}
