package domain

// CartItem is a product snapshot plus a quantity that never drops below 1.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

type WishlistItem = Product
