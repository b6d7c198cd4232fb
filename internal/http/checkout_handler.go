package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/store"
)

type Checkouter interface {
	Checkout(ctx context.Context, st *store.Store, notifier notify.Notifier, shippingAddress string) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout Checkouter
	timeout  time.Duration
}

func NewCheckoutHandler(checkout Checkouter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	ShippingAddress string `json:"shipping_address"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	s := getSession(r.Context())
	// orders belong to the verified caller, which may be a bearer token
	// rather than the user signed in on the session
	if u := getUser(r.Context()); u != nil {
		if current := s.Store.User(); current == nil || current.ID != u.ID {
			s.Store.SetUser(u)
		}
	}

	order, err := h.checkout.Checkout(ctx, s.Store, s.Toaster, req.ShippingAddress)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderDTO(*order))
}
