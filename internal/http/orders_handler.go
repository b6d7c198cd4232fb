package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/go-chi/chi/v5"
)

type OrderManager interface {
	ListForUser(ctx context.Context, user *domain.User) ([]domain.Order, error)
	Cancel(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error)
	ChangeAddress(ctx context.Context, user *domain.User, orderID, address string) (*domain.Order, error)
	Track(ctx context.Context, user *domain.User, orderID string) (presentation.Progress, error)
}

type OrdersHandler struct {
	orders  OrderManager
	timeout time.Duration
}

func NewOrdersHandler(orders OrderManager, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []OrderDTO `json:"orders"`
}

type ChangeAddressRequestDTO struct {
	ShippingAddress string `json:"shipping_address"`
}

// GET /api/v1/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListForUser(ctx, getUser(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: dtos})
}

// GET /api/v1/orders/{order_id}/tracking
func (h *OrdersHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	progress, err := h.orders.Track(ctx, getUser(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

// POST /api/v1/orders/{order_id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Cancel(ctx, getUser(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	getSession(r.Context()).Toaster.Notify(notify.KindSuccess, "Order cancelled successfully")
	respondJSON(w, http.StatusOK, toOrderDTO(*order))
}

// PUT /api/v1/orders/{order_id}/address
func (h *OrdersHandler) ChangeAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ChangeAddressRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orders.ChangeAddress(ctx, getUser(r.Context()), chi.URLParam(r, "order_id"), req.ShippingAddress)
	if err != nil {
		handleError(w, r, err)
		return
	}
	getSession(r.Context()).Toaster.Notify(notify.KindSuccess, "Shipping address updated")
	respondJSON(w, http.StatusOK, toOrderDTO(*order))
}
