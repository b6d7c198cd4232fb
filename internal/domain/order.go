package domain

type OrderStatus string

const (
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

// GuestUserID owns orders placed without a signed-in user.
const GuestUserID = "guest"

// OrderLine is the sanitized copy of a cart item stored with an order.
type OrderLine struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type Order struct {
	ID              string      `json:"id,omitempty"`
	UserID          string      `json:"userId"`
	Items           []OrderLine `json:"items"`
	Total           float64     `json:"total"`
	Date            string      `json:"date"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
}

// EffectiveStatus treats a missing status as Processing.
func (o Order) EffectiveStatus() OrderStatus {
	if o.Status == "" {
		return OrderStatusProcessing
	}
	return o.Status
}
