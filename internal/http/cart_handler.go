package http

import (
	"context"
	"net/http"
	"time"
)

type CartHandler struct {
	catalog ProductGetter
	timeout time.Duration
}

func NewCartHandler(catalog ProductGetter, timeout time.Duration) *CartHandler {
	return &CartHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type AddItemResponseDTO struct {
	Incremented bool         `json:"incremented"`
	Quantity    int          `json:"quantity"`
	Cart        CartResponse `json:"cart"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	respondJSON(w, http.StatusOK, toCartResponse(s.Store.Cart()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	p, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s := getSession(r.Context())
	res := s.Store.AddToCart(*p)
	respondJSON(w, http.StatusCreated, AddItemResponseDTO{
		Incremented: res.Incremented,
		Quantity:    res.Quantity,
		Cart:        toCartResponse(s.Store.Cart()),
	})
}

// PATCH /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "invalid_delta", "delta must not be zero")
		return
	}

	s := getSession(r.Context())
	s.Store.UpdateQuantity(productID, req.Delta)
	respondJSON(w, http.StatusOK, toCartResponse(s.Store.Cart()))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	s := getSession(r.Context())
	s.Store.RemoveFromCart(productID)
	respondJSON(w, http.StatusOK, toCartResponse(s.Store.Cart()))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	s.Store.ClearCart()
	respondJSON(w, http.StatusOK, toCartResponse(s.Store.Cart()))
}
