package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffersCoupons(t *testing.T) {
	handler := NewOffersHandler(&mockOfferLister{offers: []domain.Offer{
		{Code: "DENIM20", Discount: 20},
		{Code: "FIRST500", Discount: 500, Type: domain.OfferFlat},
	}}, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.Coupons(recorder, httptest.NewRequest(http.MethodGet, "/offers", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CouponsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Coupons, 2)
	assert.Equal(t, "20% OFF", resp.Coupons[0].Label)
	assert.Equal(t, "₹500 OFF", resp.Coupons[1].Label)
}

func TestOffersDeal(t *testing.T) {
	handler := NewOffersHandler(&mockOfferLister{}, 5*time.Second)
	handler.now = func() time.Time { return time.Date(2026, 3, 4, 22, 30, 15, 0, time.UTC) }

	recorder := httptest.NewRecorder()
	handler.Deal(recorder, httptest.NewRequest(http.MethodGet, "/offers/deal", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp DealResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "01:29:45", resp.Countdown)
	assert.Equal(t, 1, resp.Hours)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), resp.EndsAt.UTC())
}

func TestOffersOnSale(t *testing.T) {
	lister := &mockOfferLister{sale: []domain.Product{
		{ID: 1, Price: 50, Discount: intPtr(20)},
		{ID: 2, Price: 10, Description: "Big offer | [OFFER:30]"},
	}}
	handler := NewOffersHandler(lister, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.OnSale(recorder, httptest.NewRequest(http.MethodGet, "/offers/products?sort=desc", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []presentation.SortOrder{presentation.SortDesc}, lister.sorts)

	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Products, 2)
	assert.Equal(t, int64(1), resp.Products[0].ID)
	assert.Equal(t, "63.00", resp.Products[0].OriginalPrice)
	assert.Equal(t, 30, *resp.Products[1].Discount)

	recorder = httptest.NewRecorder()
	handler.OnSale(recorder, httptest.NewRequest(http.MethodGet, "/offers/products?sort=up", nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
