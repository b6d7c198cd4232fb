package service

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
}

type EventPublisher interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

type OrderRepository interface {
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderAddress(ctx context.Context, id, address string) (*domain.Order, error)
}

// OrderLister reads every order regardless of owner.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type OfferSource interface {
	ListOffers(ctx context.Context) []domain.Offer
}

type OfferStore interface {
	OfferSource
	CreateOffer(ctx context.Context, o domain.Offer) (*domain.Offer, error)
}

type ProductLister interface {
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error)
}

type Catalog interface {
	ProductLister
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
}

// ownerID is the user ID orders are filed under.
func ownerID(u *domain.User) string {
	if u == nil || u.ID == "" {
		return domain.GuestUserID
	}
	return u.ID
}
