package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"storefront-client/internal/domain"
)

type CartService struct {
	cart     CartStore
	session  SessionManager
	products ProductLoader
	remote   domain.CartRemote
	events   domain.EventPublisher
}

func NewCartService(cart CartStore, session SessionManager, products ProductLoader, remote domain.CartRemote, events domain.EventPublisher) *CartService {
	return &CartService{
		cart:     cart,
		session:  session,
		products: products,
		remote:   remote,
		events:   events,
	}
}

func (s *CartService) Lines() []domain.CartLine {
	return s.cart.Lines()
}

// Add checks the product against the catalogue before adding it: it must
// be in stock and, when it has sizes, size must be one of them.
func (s *CartService) Add(ctx context.Context, productID, size string, quantity int) ([]domain.CartLine, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	product, err := s.products.Product(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", domain.ErrProductUnavailable, productID)
	}
	if len(product.Sizes) > 0 && !slices.Contains(product.Sizes, size) {
		return nil, fmt.Errorf("%w: size %q not offered", domain.ErrInvalidInput, size)
	}

	return s.cart.AddToCart(productID, size, quantity), nil
}

func (s *CartService) Remove(productID, size string) []domain.CartLine {
	return s.cart.RemoveFromCart(productID, size)
}

func (s *CartService) SetQuantity(productID, size string, quantity int) ([]domain.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}
	if _, ok := s.cart.Quantity(productID, size); !ok {
		return nil, fmt.Errorf("%w: line %s/%s", domain.ErrNotFound, productID, size)
	}
	return s.cart.UpdateQuantity(productID, size, quantity), nil
}

func (s *CartService) Increment(productID, size string) []domain.CartLine {
	return s.cart.Increment(productID, size)
}

func (s *CartService) Decrement(productID, size string) []domain.CartLine {
	return s.cart.Decrement(productID, size)
}

func (s *CartService) Clear() []domain.CartLine {
	return s.cart.ClearCart()
}

// SaveForLater stores the current cart on the server for the logged-in
// user.
func (s *CartService) SaveForLater(ctx context.Context) error {
	_, userID, err := currentUser(s.session)
	if err != nil {
		return err
	}

	lines := s.cart.Lines()
	if err := s.remote.SaveCart(ctx, userID, lines); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	publish(ctx, s.events, domain.EventCartSaved, userID, map[string]int{"lines": len(lines)})
	return nil
}
