package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/presentation"
)

type OrderService struct {
	repo OrderRepository
}

func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// ListForUser returns the user's orders, newest first. A nil user lists guest
// orders.
func (s *OrderService) ListForUser(ctx context.Context, user *domain.User) ([]domain.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, ownerID(user))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := slices.Clone(orders)
	slices.Reverse(out)
	return out, nil
}

func (s *OrderService) Cancel(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	if _, err := s.modifiable(ctx, user, orderID); err != nil {
		return nil, err
	}
	updated, err := s.repo.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return updated, nil
}

func (s *OrderService) ChangeAddress(ctx context.Context, user *domain.User, orderID, address string) (*domain.Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrInvalidAddress
	}
	if _, err := s.modifiable(ctx, user, orderID); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateOrderAddress(ctx, orderID, address)
	if err != nil {
		return nil, fmt.Errorf("update order address: %w", err)
	}
	return updated, nil
}

// Track returns the delivery progress of one of the user's orders.
func (s *OrderService) Track(ctx context.Context, user *domain.User, orderID string) (presentation.Progress, error) {
	order, err := s.owned(ctx, user, orderID)
	if err != nil {
		return presentation.Progress{}, err
	}
	return presentation.Tracking(*order), nil
}

func (s *OrderService) owned(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !user.IsAdmin() && order.UserID != ownerID(user) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) modifiable(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.owned(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !presentation.CanModifyOrder(*order) {
		return nil, fmt.Errorf("%w: status is %s", ErrOrderLocked, order.EffectiveStatus())
	}
	return order, nil
}
