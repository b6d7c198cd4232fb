package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalog := newMockCatalog(testProducts()...)
	timeout := 5 * time.Second
	router := NewRouter(RouterConfig{
		Logger:             logger.Nop(),
		RequestTimeout:     timeout,
		MaxRequestBodySize: 1 << 10,
		AllowedOrigins:     []string{"http://localhost:5173"},
		Sessions:           newTestRegistry(t),
		Tokens:             mockTokens{users: map[string]domain.User{"good": testUser()}},
		Products:           NewProductHandler(catalog, timeout),
		Cart:               NewCartHandler(catalog, timeout),
		Wishlist:           NewWishlistHandler(catalog, timeout),
		Auth:               NewAuthHandler(&mockAuth{}, timeout),
		Checkout:           NewCheckoutHandler(&mockCheckout{order: &domain.Order{ID: "ord-1"}}, timeout),
		Orders:             NewOrdersHandler(&mockOrderManager{}, timeout),
		Offers:             NewOffersHandler(&mockOfferLister{}, timeout),
		Admin:              NewAdminHandler(&mockAdmin{}, timeout),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestRouter_CartSurvivesAcrossRequests(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/cart/items", "application/json", strings.NewReader(`{"product_id":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sid := resp.Header.Get(HeaderSessionID)
	require.NotEmpty(t, sid)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/cart", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderSessionID, sid)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var cart CartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
	assert.Equal(t, 1, cart.Count)
	assert.Equal(t, "20.00", cart.Total)
}

func TestRouter_GuestsCannotListOrders(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/orders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer good")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_BodyLimit(t *testing.T) {
	srv := newTestServer(t)

	body := `{"shipping_address":"` + strings.Repeat("x", 2048) + `"}`
	resp, err := http.Post(srv.URL+"/api/v1/checkout", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/cart", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
