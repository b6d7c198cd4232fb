package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/remote"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/store"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *session.Registry {
	t.Helper()
	reg := session.NewRegistry(repository.NewMemoryRepository(), nil, session.Config{}, logger.Nop())
	t.Cleanup(reg.Close)
	return reg
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := newTestRegistry(t).Get(context.Background(), uuid.New().String())
	require.NoError(t, err)
	return s
}

// withTestSession attaches s, and optionally a user, the way the middleware
// would.
func withTestSession(r *http.Request, s *session.Session, u *domain.User) *http.Request {
	ctx := withSession(r.Context(), s)
	if u != nil {
		ctx = withUser(ctx, u)
	}
	return r.WithContext(ctx)
}

func intPtr(v int) *int { return &v }

type mockCatalog struct {
	m        sync.RWMutex
	products map[int64]domain.Product
	order    []int64
	err      error
	searched []string
}

func newMockCatalog(products ...domain.Product) *mockCatalog {
	c := &mockCatalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func (c *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("get product %d: %w", id, remote.ErrNotFound)
	}
	return &p, nil
}

func (c *mockCatalog) ListProducts(_ context.Context, offset, limit int) ([]domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.Product
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out, nil
}

func (c *mockCatalog) SearchProducts(_ context.Context, title string) ([]domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.searched = append(c.searched, title)
	var out []domain.Product
	for _, id := range c.order {
		if c.products[id].Title == title {
			out = append(out, c.products[id])
		}
	}
	return out, nil
}

type mockAuth struct {
	m       sync.RWMutex
	session *auth.Session
	err     error
	updates []auth.ProfileUpdate
}

func (a *mockAuth) Login(_ context.Context, login, password string) (*auth.Session, error) {
	a.m.RLock()
	defer a.m.RUnlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

func (a *mockAuth) Register(_ context.Context, name, email, password string) (*auth.Session, error) {
	return a.Login(context.Background(), email, password)
}

func (a *mockAuth) UpdateProfile(_ context.Context, user domain.User, upd auth.ProfileUpdate) (*auth.Session, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.updates = append(a.updates, upd)
	if a.err != nil {
		return nil, a.err
	}
	user.Name = upd.Name
	return &auth.Session{User: user, Token: "reissued"}, nil
}

type mockTokens struct {
	users map[string]domain.User
}

func (m mockTokens) ParseToken(token string) (*domain.User, error) {
	u, ok := m.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &u, nil
}

type mockCheckout struct {
	m     sync.RWMutex
	order *domain.Order
	err   error
	users []*domain.User
}

func (c *mockCheckout) Checkout(_ context.Context, st *store.Store, notifier notify.Notifier, shippingAddress string) (*domain.Order, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.users = append(c.users, st.User())
	if c.err != nil {
		return nil, c.err
	}
	st.ClearCart()
	o := *c.order
	o.ShippingAddress = shippingAddress
	return &o, nil
}

type mockOrderManager struct {
	m      sync.RWMutex
	orders []domain.Order
	err    error
}

func (o *mockOrderManager) ListForUser(_ context.Context, user *domain.User) ([]domain.Order, error) {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.orders, o.err
}

func (o *mockOrderManager) Cancel(_ context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	o.m.RLock()
	defer o.m.RUnlock()
	if o.err != nil {
		return nil, o.err
	}
	return &domain.Order{ID: orderID, Status: domain.OrderStatusCancelled}, nil
}

func (o *mockOrderManager) ChangeAddress(_ context.Context, user *domain.User, orderID, address string) (*domain.Order, error) {
	o.m.RLock()
	defer o.m.RUnlock()
	if o.err != nil {
		return nil, o.err
	}
	return &domain.Order{ID: orderID, ShippingAddress: address}, nil
}

func (o *mockOrderManager) Track(_ context.Context, user *domain.User, orderID string) (presentation.Progress, error) {
	o.m.RLock()
	defer o.m.RUnlock()
	if o.err != nil {
		return presentation.Progress{}, o.err
	}
	return presentation.Tracking(domain.Order{ID: orderID, Status: domain.OrderStatusShipped}), nil
}

type mockOfferLister struct {
	offers []domain.Offer
	sale   []domain.Product
	sorts  []presentation.SortOrder
}

func (o *mockOfferLister) List(context.Context) []domain.Offer {
	return o.offers
}

func (o *mockOfferLister) OnSaleProducts(_ context.Context, order presentation.SortOrder) ([]domain.Product, error) {
	o.sorts = append(o.sorts, order)
	return presentation.SortByPrice(o.sale, order), nil
}
