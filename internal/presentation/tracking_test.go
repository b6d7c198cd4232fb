package presentation

import (
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusStep(t *testing.T) {
	assert.Equal(t, 1, StatusStep(domain.OrderStatusProcessing))
	assert.Equal(t, 2, StatusStep(domain.OrderStatusShipped))
	assert.Equal(t, 3, StatusStep(domain.OrderStatusOutForDelivery))
	assert.Equal(t, 4, StatusStep(domain.OrderStatusDelivered))
	assert.Equal(t, 0, StatusStep(domain.OrderStatusCancelled))
	assert.Equal(t, 0, StatusStep("Lost"))
}

func TestTracking_Shipped(t *testing.T) {
	p := Tracking(domain.Order{Status: domain.OrderStatusShipped})

	assert.False(t, p.Cancelled)
	assert.Equal(t, 2, p.Current)
	require.Len(t, p.Steps, 4)
	assert.True(t, p.Steps[0].Completed)
	assert.True(t, p.Steps[1].Completed)
	assert.False(t, p.Steps[2].Completed)
	assert.False(t, p.Steps[3].Completed)
	assert.Equal(t, "Out for Delivery", p.Steps[2].Label)
}

func TestTracking_Cancelled(t *testing.T) {
	p := Tracking(domain.Order{Status: domain.OrderStatusCancelled})

	assert.True(t, p.Cancelled)
	assert.Empty(t, p.Steps)
	assert.Equal(t, 0, p.Current)
}

func TestTracking_MissingStatusIsProcessing(t *testing.T) {
	p := Tracking(domain.Order{})
	assert.Equal(t, domain.OrderStatusProcessing, p.Status)
	assert.Equal(t, 1, p.Current)
	assert.True(t, p.Steps[0].Completed)
	assert.False(t, p.Steps[1].Completed)
}

func TestCanModifyOrder(t *testing.T) {
	assert.True(t, CanModifyOrder(domain.Order{}))
	assert.True(t, CanModifyOrder(domain.Order{Status: domain.OrderStatusProcessing}))
	assert.False(t, CanModifyOrder(domain.Order{Status: domain.OrderStatusShipped}))
	assert.False(t, CanModifyOrder(domain.Order{Status: domain.OrderStatusCancelled}))
}
