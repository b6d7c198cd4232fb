package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
)

type OfferLister interface {
	List(ctx context.Context) []domain.Offer
	OnSaleProducts(ctx context.Context, order presentation.SortOrder) ([]domain.Product, error)
}

type OffersHandler struct {
	offers  OfferLister
	timeout time.Duration
	now     func() time.Time
}

func NewOffersHandler(offers OfferLister, timeout time.Duration) *OffersHandler {
	return &OffersHandler{
		offers:  offers,
		timeout: timeout,
		now:     time.Now,
	}
}

type CouponsResponse struct {
	Coupons []CouponDTO `json:"coupons"`
}

type DealResponse struct {
	Countdown string    `json:"countdown"`
	Hours     int       `json:"hours"`
	Minutes   int       `json:"minutes"`
	Seconds   int       `json:"seconds"`
	EndsAt    time.Time `json:"ends_at"`
}

type SaleQuery struct {
	Sort string `schema:"sort"`
}

// GET /api/v1/offers
func (h *OffersHandler) Coupons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	offers := h.offers.List(ctx)
	coupons := make([]CouponDTO, 0, len(offers))
	for _, o := range offers {
		coupons = append(coupons, CouponDTO{Offer: o, Label: presentation.CouponLabel(o)})
	}
	respondJSON(w, http.StatusOK, CouponsResponse{Coupons: coupons})
}

// GET /api/v1/offers/deal
func (h *OffersHandler) Deal(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	end := presentation.EndOfDay(now)
	c := presentation.CountdownUntil(now, end)
	respondJSON(w, http.StatusOK, DealResponse{
		Countdown: c.String(),
		Hours:     c.Hours,
		Minutes:   c.Mins,
		Seconds:   c.Secs,
		EndsAt:    end,
	})
}

// GET /api/v1/offers/products
func (h *OffersHandler) OnSale(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var q SaleQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	order, ok := parseSort(q.Sort)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be asc or desc")
		return
	}

	products, err := h.offers.OnSaleProducts(ctx, order)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s := getSession(r.Context())
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p, s != nil && s.Store.InWishlist(p.ID)))
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: dtos})
}
