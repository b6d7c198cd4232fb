package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/fjod/go_storefront/internal/domain"
)

// DataClient talks to the mock-data API holding users, orders and offers.
type DataClient struct {
	t *transport
}

func NewDataClient(cfg Config) *DataClient {
	return &DataClient{t: newTransport("data", DefaultDataURL, cfg)}
}

// FindUsersByEmail returns users registered with exactly this email. The
// backend answers 404 for a filter without matches and matches substrings,
// so both are handled here.
func (c *DataClient) FindUsersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	q := url.Values{}
	q.Set("email", email)

	var users []domain.User
	err := c.t.do(ctx, http.MethodGet, "/users", q, nil, &users)
	if errors.Is(err, ErrNotFound) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	matched := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Email == email {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (c *DataClient) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	var created domain.User
	if err := c.t.do(ctx, http.MethodPost, "/users", nil, u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser sends a partial update; fields left out keep their remote value.
func (c *DataClient) UpdateUser(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	var updated domain.User
	if err := c.t.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListOffers never fails: a missing resource or any other error yields no
// offers.
func (c *DataClient) ListOffers(ctx context.Context) []domain.Offer {
	var offers []domain.Offer
	if err := c.t.do(ctx, http.MethodGet, "/offers", nil, nil, &offers); err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.t.logger.WarnContext(ctx, "list offers failed", "error", err)
		}
		return []domain.Offer{}
	}
	return nonNil(offers)
}

func (c *DataClient) CreateOffer(ctx context.Context, o domain.Offer) (*domain.Offer, error) {
	var created domain.Offer
	if err := c.t.do(ctx, http.MethodPost, "/offers", nil, o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *DataClient) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	var created domain.Order
	if err := c.t.do(ctx, http.MethodPost, "/orders", nil, o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *DataClient) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.t.do(ctx, http.MethodGet, "/orders", nil, nil, &orders)
	if errors.Is(err, ErrNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	return nonNil(orders), nil
}

func (c *DataClient) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("userId", userID)

	var orders []domain.Order
	err := c.t.do(ctx, http.MethodGet, "/orders", q, nil, &orders)
	if errors.Is(err, ErrNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (c *DataClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.t.do(ctx, http.MethodGet, orderPath(id), nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *DataClient) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return c.updateOrder(ctx, id, map[string]any{"status": status})
}

func (c *DataClient) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return c.UpdateOrderStatus(ctx, id, domain.OrderStatusCancelled)
}

func (c *DataClient) UpdateOrderAddress(ctx context.Context, id, address string) (*domain.Order, error) {
	return c.updateOrder(ctx, id, map[string]any{"shippingAddress": address})
}

func (c *DataClient) updateOrder(ctx context.Context, id string, fields map[string]any) (*domain.Order, error) {
	var o domain.Order
	if err := c.t.do(ctx, http.MethodPut, orderPath(id), nil, fields, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id)
}
