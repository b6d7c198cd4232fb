package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_storefront/internal/domain"
)

const (
	DefaultOffset = 0
	DefaultLimit  = 20
)

// CatalogClient talks to the product catalog API.
type CatalogClient struct {
	t *transport
}

func NewCatalogClient(cfg Config) *CatalogClient {
	return &CatalogClient{t: newTransport("catalog", DefaultCatalogURL, cfg)}
}

// ListProducts pages through the catalog. A negative offset or non-positive
// limit falls back to 0 and 20.
func (c *CatalogClient) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	if offset < 0 {
		offset = DefaultOffset
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var products []domain.Product
	if err := c.t.do(ctx, http.MethodGet, "/products", q, nil, &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.t.do(ctx, http.MethodGet, productPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProducts filters the catalog by title.
func (c *CatalogClient) SearchProducts(ctx context.Context, title string) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("title", title)

	var products []domain.Product
	if err := c.t.do(ctx, http.MethodGet, "/products/", q, nil, &products); err != nil {
		return nil, err
	}
	return nonNil(products), nil
}

func (c *CatalogClient) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.t.do(ctx, http.MethodPost, "/products", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *CatalogClient) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.t.do(ctx, http.MethodPut, productPath(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
