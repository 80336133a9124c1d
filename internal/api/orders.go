package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront-client/internal/domain"
)

// PlaceOrder is never retried: a repeated POST could place the order twice.
func (c *Client) PlaceOrder(ctx context.Context, userID string, order *domain.Order) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/place-order/orders/" + url.PathEscape(userID),
		endpoint: "orders.place",
		body:     order,
	}, nil)
}

func (c *Client) Orders(ctx context.Context, userID string) ([]domain.PlacedOrder, error) {
	orders := []domain.PlacedOrder{}
	if err := c.get(ctx, "orders.list", "/place-order/orders/"+url.PathEscape(userID), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
