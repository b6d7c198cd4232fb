package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/presentation"
	"github.com/fjod/go_storefront/internal/store"
)

const (
	MessagePaymentSuccessful = "Payment Successful!"
	MessageOrderFailed       = "Order failed. Please try again."

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// CheckoutService turns a session cart into a remote order. Payment is
// simulated: submitting the order is the payment.
type CheckoutService struct {
	orders OrderCreator
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewCheckoutService(orders OrderCreator, events EventPublisher, logger *slog.Logger) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		orders: orders,
		events: events,
		logger: logger.With("component", "checkout"),
		now:    time.Now,
	}
}

// Checkout places an order for the cart in st. On success the ordered lines
// are removed from the cart; on failure it is left untouched so the user can
// retry.
func (c *CheckoutService) Checkout(ctx context.Context, st *store.Store, notifier notify.Notifier, shippingAddress string) (*domain.Order, error) {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return nil, ErrInvalidAddress
	}

	cart := st.Cart()
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	order := BuildOrder(cart, st.User(), shippingAddress, c.now())

	created, err := c.orders.CreateOrder(ctx, order)
	if err != nil {
		notifier.Notify(notify.KindError, MessageOrderFailed)
		return nil, fmt.Errorf("create order: %w", err)
	}

	st.RemoveOrdered(cart)
	notifier.Notify(notify.KindSuccess, MessagePaymentSuccessful)

	if err := c.events.OrderPlaced(ctx, *created); err != nil {
		c.logger.ErrorContext(ctx, "order event not published", "order_id", created.ID, "error", err)
	}
	return created, nil
}

// BuildOrder snapshots cart lines into an order awaiting processing.
func BuildOrder(cart []domain.CartItem, user *domain.User, shippingAddress string, now time.Time) domain.Order {
	lines := make([]domain.OrderLine, 0, len(cart))
	for _, item := range cart {
		lines = append(lines, domain.OrderLine{
			ID:       item.ID,
			Title:    item.Title,
			Price:    item.Price,
			Quantity: item.Quantity,
			Image:    firstImage(item.Images),
		})
	}

	return domain.Order{
		UserID:          ownerID(user),
		Items:           lines,
		Total:           presentation.CartTotal(cart).Round(2).InexactFloat64(),
		Date:            now.UTC().Format(isoMillis),
		Status:          domain.OrderStatusProcessing,
		ShippingAddress: shippingAddress,
	}
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return presentation.CleanImage(images[0])
}
