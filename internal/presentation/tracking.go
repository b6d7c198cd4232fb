package presentation

import "github.com/fjod/go_storefront/internal/domain"

var trackingSteps = [4]domain.OrderStatus{
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusOutForDelivery,
	domain.OrderStatusDelivered,
}

// StatusStep maps an order status to its 1-based progress step, or 0 for
// anything off the delivery track (including Cancelled).
func StatusStep(status domain.OrderStatus) int {
	for i, s := range trackingSteps {
		if s == status {
			return i + 1
		}
	}
	return 0
}

type Step struct {
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

type Progress struct {
	Status    domain.OrderStatus `json:"status"`
	Cancelled bool               `json:"cancelled"`
	Current   int                `json:"current"`
	Steps     []Step             `json:"steps,omitempty"`
}

// Tracking builds the four-stage indicator for an order. Cancelled orders
// carry no steps.
func Tracking(o domain.Order) Progress {
	status := o.EffectiveStatus()
	if status == domain.OrderStatusCancelled {
		return Progress{Status: status, Cancelled: true}
	}

	current := StatusStep(status)
	steps := make([]Step, len(trackingSteps))
	for i, s := range trackingSteps {
		steps[i] = Step{Label: string(s), Completed: i+1 <= current}
	}
	return Progress{Status: status, Current: current, Steps: steps}
}

// CanModifyOrder reports whether the address can change or the order be
// cancelled.
func CanModifyOrder(o domain.Order) bool {
	return o.EffectiveStatus() == domain.OrderStatusProcessing
}
