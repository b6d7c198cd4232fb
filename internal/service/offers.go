package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/remote"
)

// demoDealCount products get a generated discount when nothing in the catalog
// is on sale.
const demoDealCount = 8

// FallbackOffers are shown when the offers resource is missing or empty.
func FallbackOffers() []domain.Offer {
	return []domain.Offer{
		{Code: "DENIM20", Discount: 20, Type: domain.OfferPercent, Description: "Applicable on all premium Denim collection."},
		{Code: "FIRST500", Discount: 500, Type: domain.OfferFlat, Description: "Exclusive welcome offer on your first purchase."},
	}
}

type OfferService struct {
	offers   OfferSource
	products ProductLister
	// demoDiscount returns a percentage in [10, 50].
	demoDiscount func() int
}

func NewOfferService(offers OfferSource, products ProductLister) *OfferService {
	return &OfferService{
		offers:       offers,
		products:     products,
		demoDiscount: func() int { return 10 + rand.IntN(41) },
	}
}

func (s *OfferService) List(ctx context.Context) []domain.Offer {
	offers := s.offers.ListOffers(ctx)
	if len(offers) == 0 {
		return FallbackOffers()
	}
	return offers
}

// OnSaleProducts lists discounted products from the first catalog page. When
// none are discounted the first few products get a generated deal.
func (s *OfferService) OnSaleProducts(ctx context.Context, order presentation.SortOrder) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx, remote.DefaultOffset, remote.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	sale := presentation.OnSale(products)
	if len(sale) == 0 {
		sale = slices.Clone(products[:min(demoDealCount, len(products))])
		for i := range sale {
			d := s.demoDiscount()
			sale[i].Discount = &d
		}
	}

	for i := range sale {
		if sale[i].Discount == nil {
			if d, ok := presentation.ParseDiscount(sale[i].Description); ok {
				sale[i].Discount = &d
			}
		}
	}
	return presentation.SortByPrice(sale, order), nil
}
