package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/service"
)

type AdminOperations interface {
	Inventory(ctx context.Context, actor *domain.User) (*service.Inventory, error)
	SaveProduct(ctx context.Context, actor *domain.User, id int64, form service.ProductForm) (*domain.Product, error)
	ApplyOffer(ctx context.Context, actor *domain.User, productID int64, pct int) (*domain.Product, error)
	ToggleStock(ctx context.Context, actor *domain.User, productID int64) (*domain.Product, error)
	CreateOffer(ctx context.Context, actor *domain.User, o domain.Offer) (*domain.Offer, error)
	Orders(ctx context.Context, actor *domain.User) ([]domain.Order, error)
}

type AdminHandler struct {
	admin   AdminOperations
	timeout time.Duration
}

func NewAdminHandler(admin AdminOperations, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		timeout: timeout,
	}
}

type ApplyOfferRequestDTO struct {
	Discount int `json:"discount"`
}

// GET /api/v1/admin/inventory
func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	inv, err := h.admin.Inventory(ctx, getUser(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// GET /api/v1/admin/orders
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.admin.Orders(ctx, getUser(r.Context()))
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

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, 0, http.StatusCreated)
}

// PUT /api/v1/admin/products/{product_id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.saveProduct(w, r, productID, http.StatusOK)
}

func (h *AdminHandler) saveProduct(w http.ResponseWriter, r *http.Request, id int64, status int) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form service.ProductForm
	if !decodeJSON(w, r, &form) {
		return
	}

	p, err := h.admin.SaveProduct(ctx, getUser(r.Context()), id, form)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, status, toProductDTO(*p, false))
}

// POST /api/v1/admin/products/{product_id}/offer
func (h *AdminHandler) ApplyOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req ApplyOfferRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.admin.ApplyOffer(ctx, getUser(r.Context()), productID, req.Discount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTO(*p, false))
}

// POST /api/v1/admin/products/{product_id}/stock/toggle
func (h *AdminHandler) ToggleStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.admin.ToggleStock(ctx, getUser(r.Context()), productID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductDTO(*p, false))
}

// POST /api/v1/admin/offers
func (h *AdminHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Offer
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.admin.CreateOffer(ctx, getUser(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, CouponDTO{Offer: *o, Label: presentation.CouponLabel(*o)})
}
