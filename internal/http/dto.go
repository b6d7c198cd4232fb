package http

import (
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
)

type ProductDTO struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Price         float64         `json:"price"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	Images        []string        `json:"images"`
	Category      domain.Category `json:"category"`
	Discount      *int            `json:"discount,omitempty"`
	OriginalPrice string          `json:"original_price,omitempty"`
	Stock         *int            `json:"stock,omitempty"`
	InWishlist    bool            `json:"in_wishlist"`
}

func toProductDTO(p domain.Product, inWishlist bool) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: presentation.StripOfferMarker(p.Description),
		Image:       presentation.PrimaryImage(p.Images),
		Images:      presentation.CleanImages(p.Images),
		Category:    p.Category,
		Stock:       p.Stock,
		InWishlist:  inWishlist,
	}
	if d, ok := presentation.EffectiveDiscount(p); ok {
		dto.Discount = &d
		if original, err := presentation.OriginalPrice(p.Price, d); err == nil {
			dto.OriginalPrice = presentation.FormatPrice(original)
		}
	}
	return dto
}

type CartLineDTO struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	LineTotal string  `json:"line_total"`
}

type CartResponse struct {
	Items []CartLineDTO `json:"items"`
	Count int           `json:"count"`
	Total string        `json:"total"`
}

func toCartResponse(items []domain.CartItem) CartResponse {
	lines := make([]CartLineDTO, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, CartLineDTO{
			ID:        item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Image:     presentation.PrimaryImage(item.Images),
			Quantity:  item.Quantity,
			LineTotal: presentation.FormatPrice(presentation.LineTotal(item)),
		})
		count += item.Quantity
	}
	return CartResponse{
		Items: lines,
		Count: count,
		Total: presentation.FormatPrice(presentation.CartTotal(items)),
	}
}

type WishlistResponse struct {
	Items []ProductDTO `json:"items"`
	Count int          `json:"count"`
}

func toWishlistResponse(items []domain.WishlistItem) WishlistResponse {
	dtos := make([]ProductDTO, 0, len(items))
	for _, p := range items {
		dtos = append(dtos, toProductDTO(p, true))
	}
	return WishlistResponse{Items: dtos, Count: len(dtos)}
}

type CouponDTO struct {
	domain.Offer
	Label string `json:"label"`
}

type OrderDTO struct {
	domain.Order
	CanModify bool `json:"can_modify"`
}

func toOrderDTO(o domain.Order) OrderDTO {
	o.Status = o.EffectiveStatus()
	return OrderDTO{Order: o, CanModify: presentation.CanModifyOrder(o)}
}
