package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/remote"
)

const (
	DefaultCategory = "Clothing"
	// DefaultStock is assumed for products the catalog reports without stock.
	DefaultStock = 50

	StatusActive     = "Active"
	StatusOutOfStock = "Out of Stock"
)

// ProductForm is what the admin product editor submits.
type ProductForm struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	CategoryID  int64   `json:"categoryId"`
}

type InventoryItem struct {
	domain.Product
	SKU    string `json:"sku"`
	Status string `json:"status"`
}

type Inventory struct {
	Products []InventoryItem `json:"products"`
	Offers   []domain.Offer  `json:"offers"`
}

type AdminService struct {
	catalog Catalog
	offers  OfferStore
	orders  OrderLister
	now     func() time.Time
}

func NewAdminService(catalog Catalog, offers OfferStore, orders OrderLister) *AdminService {
	return &AdminService{catalog: catalog, offers: offers, orders: orders, now: time.Now}
}

func (s *AdminService) Inventory(ctx context.Context, actor *domain.User) (*Inventory, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	products, err := s.catalog.ListProducts(ctx, remote.DefaultOffset, remote.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]InventoryItem, 0, len(products))
	for _, p := range products {
		stock := stockOf(p)
		p.Stock = &stock
		if d, ok := presentation.EffectiveDiscount(p); ok {
			p.Discount = &d
		}
		status := StatusActive
		if stock == 0 {
			status = StatusOutOfStock
		}
		items = append(items, InventoryItem{
			Product: p,
			SKU:     fmt.Sprintf("SKU-%d", p.ID),
			Status:  status,
		})
	}

	return &Inventory{Products: items, Offers: s.offers.ListOffers(ctx)}, nil
}

// Orders lists every customer's orders, newest first.
func (s *AdminService) Orders(ctx context.Context, actor *domain.User) ([]domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := slices.Clone(orders)
	slices.Reverse(out)
	return out, nil
}

// SaveProduct creates a product when id is 0 and updates it otherwise.
func (s *AdminService) SaveProduct(ctx context.Context, actor *domain.User, id int64, form ProductForm) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" || form.Price <= 0 {
		return nil, fmt.Errorf("%w: title and a positive price are required", ErrInvalidProduct)
	}

	category := strings.TrimSpace(form.Category)
	if category == "" {
		category = DefaultCategory
	}
	in := domain.ProductInput{
		Title:       form.Title,
		Price:       form.Price,
		Description: form.Description,
		CategoryID:  form.CategoryID,
		Category:    domain.Category{ID: form.CategoryID, Name: category},
	}
	if img := strings.TrimSpace(form.Image); img != "" {
		in.Images = []string{img}
	}

	if id == 0 {
		in.CreatedAt = s.now().UTC().Format(isoMillis)
		created, err := s.catalog.CreateProduct(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}
		return created, nil
	}

	updated, err := s.catalog.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// ApplyOffer stores a percentage discount in the product description, the
// only field the catalog lets us persist it in.
func (s *AdminService) ApplyOffer(ctx context.Context, actor *domain.User, productID int64, pct int) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if pct < 1 || pct > 99 {
		return nil, fmt.Errorf("%w: discount must be between 1 and 99", ErrInvalidOffer)
	}

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	in := p.Input()
	in.Description = presentation.WithOfferMarker(p.Description, pct)
	updated, err := s.catalog.UpdateProduct(ctx, productID, in)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	updated.Discount = &pct
	return updated, nil
}

// ToggleStock flips a product between out of stock and the default stock.
func (s *AdminService) ToggleStock(ctx context.Context, actor *domain.User, productID int64) (*domain.Product, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	next := DefaultStock
	if stockOf(*p) > 0 {
		next = 0
	}
	in := p.Input()
	in.Stock = &next
	updated, err := s.catalog.UpdateProduct(ctx, productID, in)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	updated.Stock = &next
	return updated, nil
}

func (s *AdminService) CreateOffer(ctx context.Context, actor *domain.User, o domain.Offer) (*domain.Offer, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	o.Code = strings.ToUpper(strings.TrimSpace(o.Code))
	if o.Code == "" || o.Discount <= 0 {
		return nil, fmt.Errorf("%w: code and a positive discount are required", ErrInvalidOffer)
	}
	o.Type = o.Kind()
	if o.Type == domain.OfferPercent && o.Discount >= 100 {
		return nil, fmt.Errorf("%w: percentage must be below 100", ErrInvalidOffer)
	}

	created, err := s.offers.CreateOffer(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return created, nil
}

func stockOf(p domain.Product) int {
	if p.Stock == nil {
		return DefaultStock
	}
	return *p.Stock
}
