package http

import (
	"context"
	"net/http"
	"time"
)

type WishlistHandler struct {
	catalog ProductGetter
	timeout time.Duration
}

func NewWishlistHandler(catalog ProductGetter, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type WishlistChangeDTO struct {
	InWishlist bool             `json:"in_wishlist"`
	Wishlist   WishlistResponse `json:"wishlist"`
}

// GET /api/v1/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	respondJSON(w, http.StatusOK, toWishlistResponse(s.Store.Wishlist()))
}

// POST /api/v1/wishlist/items
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
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
	status := http.StatusOK
	if s.Store.AddToWishlist(*p) {
		status = http.StatusCreated
	}
	respondJSON(w, status, WishlistChangeDTO{InWishlist: true, Wishlist: toWishlistResponse(s.Store.Wishlist())})
}

// POST /api/v1/wishlist/items/{product_id}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	s := getSession(r.Context())
	p, ok := s.Store.WishlistItem(productID)
	if !ok {
		fetched, err := h.catalog.GetProduct(ctx, productID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		p = *fetched
	}
	in := s.Store.ToggleWishlist(p)
	respondJSON(w, http.StatusOK, WishlistChangeDTO{InWishlist: in, Wishlist: toWishlistResponse(s.Store.Wishlist())})
}

// DELETE /api/v1/wishlist/items/{product_id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	s := getSession(r.Context())
	s.Store.RemoveFromWishlist(productID)
	respondJSON(w, http.StatusOK, toWishlistResponse(s.Store.Wishlist()))
}
