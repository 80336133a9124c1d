package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
	"storefront-client/internal/pricing"
)

// isoMillis matches the timestamps the backend stores for orders.
const isoMillis = "2006-01-02T15:04:05.000Z"

type CheckoutService struct {
	cart     CartStore
	session  SessionManager
	products ProductLoader
	orders   domain.OrderRemote
	remote   domain.CartRemote
	events   domain.EventPublisher
	now      func() time.Time
}

func NewCheckoutService(cart CartStore, session SessionManager, products ProductLoader, orders domain.OrderRemote, remote domain.CartRemote, events domain.EventPublisher) *CheckoutService {
	return &CheckoutService{
		cart:     cart,
		session:  session,
		products: products,
		orders:   orders,
		remote:   remote,
		events:   events,
		now:      time.Now,
	}
}

// Quote prices the current cart. Lines whose product could not be loaded
// are skipped and listed in the summary.
func (s *CheckoutService) Quote(ctx context.Context) pricing.Summary {
	lines := s.cart.Lines()
	products, _ := s.products.Load(ctx, lines)
	return pricing.Quote(lines, products)
}

// PlaceOrder submits the cart as an order. On success the cart is cleared
// locally and on the server; on failure it is left intact.
func (s *CheckoutService) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	_, userID, err := currentUser(s.session)
	if err != nil {
		return nil, err
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	products, errs := s.products.Load(ctx, lines)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrProductUnavailable, errors.Join(errs...))
	}

	order := buildOrder(lines, products, s.now())

	logger := observability.FromContext(observability.WithUserID(ctx, userID))
	if err := s.orders.PlaceOrder(ctx, userID, order); err != nil {
		logger.Error("failed to place order", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.cart.ClearCart()
	if err := s.remote.SaveCart(ctx, userID, []domain.CartLine{}); err != nil {
		logger.Warn("failed to clear remote cart", slog.String("error", err.Error()))
	}

	logger.Info("order placed",
		slog.Int("items", len(order.Items)),
		slog.Float64("total", order.Total),
	)
	publish(ctx, s.events, domain.EventOrderPlaced, userID, order)
	return order, nil
}

func buildOrder(lines []domain.CartLine, products domain.ProductMap, now time.Time) *domain.Order {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		p := products[l.ProductID]
		items = append(items, domain.OrderItem{
			Name:            p.Name,
			Price:           p.Price,
			Size:            l.Size,
			DiscountedPrice: pricing.Round2(pricing.DiscountedUnitPrice(p)),
			Quantity:        l.Quantity,
		})
	}
	return &domain.Order{
		Items:     items,
		OrderDate: now.UTC().Format(isoMillis),
		Total:     pricing.Round2(pricing.Subtotal(lines, products)),
	}
}
