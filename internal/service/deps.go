package service

import (
	"context"

	"storefront-client/internal/domain"
	"storefront-client/internal/reconcile"
	"storefront-client/internal/token"
)

// SessionManager is the session state the use cases drive.
type SessionManager interface {
	SetToken(ctx context.Context, raw string) domain.Session
	ClearToken(ctx context.Context) domain.Session
	Snapshot() domain.Session
	Claims() (*token.Claims, bool)
}

// CartStore is the local cart.
type CartStore interface {
	AddToCart(productID, size string, quantity int) []domain.CartLine
	RemoveFromCart(productID, size string) []domain.CartLine
	UpdateQuantity(productID, size string, quantity int) []domain.CartLine
	Increment(productID, size string) []domain.CartLine
	Decrement(productID, size string) []domain.CartLine
	ClearCart() []domain.CartLine
	Lines() []domain.CartLine
	Quantity(productID, size string) (int, bool)
}

type Reconciler interface {
	Reconcile(ctx context.Context) reconcile.Result
}

// ProductLoader resolves products for cart lines.
type ProductLoader interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
	Load(ctx context.Context, lines []domain.CartLine) (domain.ProductMap, []error)
}

// currentUser returns the token and subject id of a logged-in session.
func currentUser(s SessionManager) (string, string, error) {
	snap := s.Snapshot()
	if !snap.IsLoggedIn || snap.UserID == "" {
		return "", "", domain.ErrNotLoggedIn
	}
	return snap.Token, snap.UserID, nil
}
