package service

import (
	"context"
	"fmt"

	"storefront-client/internal/domain"
)

type OrderService struct {
	orders  domain.OrderRemote
	session SessionManager
}

func NewOrderService(orders domain.OrderRemote, session SessionManager) *OrderService {
	return &OrderService{orders: orders, session: session}
}

// History lists the logged-in user's past orders.
func (s *OrderService) History(ctx context.Context) ([]domain.PlacedOrder, error) {
	_, userID, err := currentUser(s.session)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.Orders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}
