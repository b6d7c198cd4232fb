package service

import (
	"context"
	"slices"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/remote"
)

// mockOrders implements OrderCreator and OrderRepository.
type mockOrders struct {
	m         sync.RWMutex
	orders    map[string]domain.Order
	created   []domain.Order
	createErr error
	nextID    int
	// onCreate runs while the order is being placed.
	onCreate func()
}

func newMockOrders(orders ...domain.Order) *mockOrders {
	m := &mockOrders{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrders) CreateOrder(_ context.Context, o domain.Order) (*domain.Order, error) {
	if m.onCreate != nil {
		m.onCreate()
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	o.ID = "ord-" + string(rune('0'+m.nextID))
	m.created = append(m.created, o)
	m.orders[o.ID] = o
	return &o, nil
}

func (m *mockOrders) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	ids := make([]string, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []domain.Order
	for _, id := range ids {
		if m.orders[id].UserID == userID {
			out = append(out, m.orders[id])
		}
	}
	return out, nil
}

func (m *mockOrders) ListOrders(_ context.Context) ([]domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	ids := make([]string, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.orders[id])
	}
	return out, nil
}

func (m *mockOrders) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, &remote.APIError{StatusCode: 404, Method: "GET", Path: "/orders/" + id}
	}
	return &o, nil
}

func (m *mockOrders) CancelOrder(_ context.Context, id string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o := m.orders[id]
	o.Status = domain.OrderStatusCancelled
	m.orders[id] = o
	return &o, nil
}

func (m *mockOrders) UpdateOrderAddress(_ context.Context, id, address string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o := m.orders[id]
	o.ShippingAddress = address
	m.orders[id] = o
	return &o, nil
}

func (m *mockOrders) get(id string) domain.Order {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.orders[id]
}

type mockPublisher struct {
	m      sync.RWMutex
	events []domain.Order
	err    error
}

func (p *mockPublisher) OrderPlaced(_ context.Context, o domain.Order) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.events = append(p.events, o)
	return p.err
}

type mockNotifier struct {
	m        sync.RWMutex
	kinds    []notify.Kind
	messages []string
}

func (n *mockNotifier) Notify(kind notify.Kind, message string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.kinds = append(n.kinds, kind)
	n.messages = append(n.messages, message)
}

// mockCatalog implements Catalog over an in-memory product list.
type mockCatalog struct {
	m        sync.RWMutex
	products []domain.Product
	inputs   map[int64]domain.ProductInput
	created  []domain.ProductInput
	listErr  error
}

func (c *mockCatalog) ListProducts(_ context.Context, offset, limit int) ([]domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	if offset >= len(c.products) {
		return []domain.Product{}, nil
	}
	end := min(offset+limit, len(c.products))
	return slices.Clone(c.products[offset:end]), nil
}

func (c *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &remote.APIError{StatusCode: 404, Method: "GET", Path: "/products"}
}

func (c *mockCatalog) CreateProduct(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.created = append(c.created, in)
	p := domain.Product{ID: int64(100 + len(c.created)), Title: in.Title, Price: in.Price, Description: in.Description, Images: in.Images, Category: in.Category}
	c.products = append(c.products, p)
	return &p, nil
}

func (c *mockCatalog) UpdateProduct(_ context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.inputs == nil {
		c.inputs = make(map[int64]domain.ProductInput)
	}
	c.inputs[id] = in
	for i, p := range c.products {
		if p.ID == id {
			p.Title, p.Price, p.Description = in.Title, in.Price, in.Description
			p.Stock = in.Stock
			c.products[i] = p
			// the real catalog drops fields it does not know
			p.Stock = nil
			return &p, nil
		}
	}
	return nil, &remote.APIError{StatusCode: 404, Method: "PUT", Path: "/products"}
}

type mockOffers struct {
	m       sync.RWMutex
	offers  []domain.Offer
	created []domain.Offer
}

func (o *mockOffers) ListOffers(context.Context) []domain.Offer {
	o.m.RLock()
	defer o.m.RUnlock()
	return slices.Clone(o.offers)
}

func (o *mockOffers) CreateOffer(_ context.Context, offer domain.Offer) (*domain.Offer, error) {
	o.m.Lock()
	defer o.m.Unlock()
	offer.ID = "off-1"
	o.created = append(o.created, offer)
	return &offer, nil
}
