package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type ProductCatalog interface {
	ProductGetter
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)
	SearchProducts(ctx context.Context, title string) ([]domain.Product, error)
}

type ProductHandler struct {
	catalog ProductCatalog
	timeout time.Duration
}

func NewProductHandler(catalog ProductCatalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductQuery struct {
	Offset int    `schema:"offset"`
	Limit  int    `schema:"limit"`
	Title  string `schema:"title"`
	Sort   string `schema:"sort"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var q ProductQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	order, ok := parseSort(q.Sort)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be asc or desc")
		return
	}
	if q.Limit > 100 {
		respondError(w, http.StatusBadRequest, "invalid_limit", "limit must not exceed 100")
		return
	}

	var (
		products []domain.Product
		err      error
	)
	if q.Title != "" {
		products, err = h.catalog.SearchProducts(ctx, q.Title)
	} else {
		products, err = h.catalog.ListProducts(ctx, q.Offset, q.Limit)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	s := getSession(r.Context())
	products = presentation.SortByPrice(products, order)
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p, s != nil && s.Store.InWishlist(p.ID)))
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: dtos})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s := getSession(r.Context())
	respondJSON(w, http.StatusOK, toProductDTO(*p, s != nil && s.Store.InWishlist(p.ID)))
}

func parseSort(raw string) (presentation.SortOrder, bool) {
	switch order := presentation.SortOrder(raw); order {
	case presentation.SortNone, presentation.SortAsc, presentation.SortDesc:
		return order, true
	default:
		return "", false
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
