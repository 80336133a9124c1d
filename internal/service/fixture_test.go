package service

import (
	"context"
	"testing"

	"storefront-client/internal/cart"
	"storefront-client/internal/catalog"
	"storefront-client/internal/domain"
	"storefront-client/internal/reconcile"
	"storefront-client/internal/session"
	"storefront-client/internal/testutil"
	"storefront-client/internal/token"
)

type fixture struct {
	kv         *testutil.MockKeyValueStore
	session    *session.Manager
	cart       *cart.Store
	catalog    *testutil.MockProductCatalog
	loader     *catalog.Loader
	carts      *testutil.MockCartRemote
	orders     *testutil.MockOrderRemote
	auth       *testutil.MockAuthRemote
	reviews    *testutil.MockReviewRemote
	events     *testutil.MockEventPublisher
	reconciler *reconcile.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := testutil.NewMockKeyValueStore()
	f := &fixture{
		kv:      kv,
		session: session.NewManager(token.NewStore(kv)),
		cart:    cart.NewStore(kv),
		catalog: testutil.NewMockProductCatalog(),
		carts:   testutil.NewMockCartRemote(),
		orders:  testutil.NewMockOrderRemote(),
		auth:    &testutil.MockAuthRemote{},
		reviews: testutil.NewMockReviewRemote(),
		events:  testutil.NewMockEventPublisher(),
	}
	f.loader = catalog.NewLoader(f.catalog)
	f.reconciler = reconcile.NewService(f.session, f.cart, f.carts)
	t.Cleanup(func() { _ = f.cart.Close(context.Background()) })
	return f
}

// login puts a valid token for userID into the session.
func (f *fixture) login(t *testing.T, userID string) string {
	t.Helper()
	raw := testutil.NewTestToken(testutil.WithTokenUserID(userID))
	f.session.SetToken(context.Background(), raw)
	return raw
}

func (f *fixture) stock(products ...domain.Product) {
	for _, p := range products {
		f.catalog.ProductsByID[p.ID] = p
	}
}

func (f *fixture) authService() *AuthService {
	return NewAuthService(f.auth, f.session, f.cart, f.reconciler, f.events)
}

func (f *fixture) cartService() *CartService {
	return NewCartService(f.cart, f.session, f.loader, f.carts, f.events)
}

func (f *fixture) checkoutService() *CheckoutService {
	return NewCheckoutService(f.cart, f.session, f.loader, f.orders, f.carts, f.events)
}
