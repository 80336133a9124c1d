// Package storefront assembles the client core and its use cases into one
// explicitly owned context.
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"storefront-client/internal/cart"
	"storefront-client/internal/catalog"
	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
	"storefront-client/internal/reconcile"
	"storefront-client/internal/service"
	"storefront-client/internal/session"
	"storefront-client/internal/token"
)

// Remotes are the backend collaborators.
type Remotes struct {
	Auth    domain.AuthRemote
	Carts   domain.CartRemote
	Catalog domain.ProductCatalog
	Orders  domain.OrderRemote
	Reviews domain.ReviewRemote
}

type Options struct {
	ReconcileTimeout time.Duration
	Reporter         domain.FailureReporter
	Events           domain.EventPublisher
	Clock            func() time.Time
}

type App struct {
	Session    *session.Manager
	Cart       *cart.Store
	Reconciler *reconcile.Service
	Products   *catalog.Loader

	Auth     *service.AuthService
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Reviews  *service.ReviewService
	Catalog  *service.CatalogService
}

// New wires the core on top of kv. Nothing is read until Initialize.
func New(kv domain.KeyValueStore, remotes Remotes, opts Options) *App {
	sessionOpts := []session.Option{session.WithFailureReporter(opts.Reporter)}
	if opts.Clock != nil {
		sessionOpts = append(sessionOpts, session.WithClock(opts.Clock))
	}
	reconcileOpts := []reconcile.Option{reconcile.WithFailureReporter(opts.Reporter)}
	if opts.ReconcileTimeout > 0 {
		reconcileOpts = append(reconcileOpts, reconcile.WithTimeout(opts.ReconcileTimeout))
	}

	a := &App{
		Session:  session.NewManager(token.NewStore(kv), sessionOpts...),
		Cart:     cart.NewStore(kv, cart.WithFailureReporter(opts.Reporter)),
		Products: catalog.NewLoader(remotes.Catalog, catalog.WithFailureReporter(opts.Reporter)),
	}
	a.Reconciler = reconcile.NewService(a.Session, a.Cart, remotes.Carts, reconcileOpts...)

	a.Auth = service.NewAuthService(remotes.Auth, a.Session, a.Cart, a.Reconciler, opts.Events)
	a.Carts = service.NewCartService(a.Cart, a.Session, a.Products, remotes.Carts, opts.Events)
	a.Checkout = service.NewCheckoutService(a.Cart, a.Session, a.Products, remotes.Orders, remotes.Carts, opts.Events)
	a.Orders = service.NewOrderService(remotes.Orders, a.Session)
	a.Reviews = service.NewReviewService(remotes.Reviews, remotes.Auth, a.Session)
	a.Catalog = service.NewCatalogService(remotes.Catalog, a.Products)
	return a
}

// Initialize restores the persisted session and cart, then reconciles the
// cart with the server when the restored session is logged in.
func (a *App) Initialize(ctx context.Context) reconcile.Result {
	snap, lines := a.restore(ctx)
	result := a.Reconciler.Reconcile(ctx)
	logInitialized(ctx, snap, lines, result)
	return result
}

// InitializeAsync restores the session and cart like Initialize but runs
// the cold-start reconcile in the background. The channel receives exactly
// one Result; local mutations made meanwhile are overwritten if the remote
// cart arrives while the session is unchanged.
func (a *App) InitializeAsync(ctx context.Context) <-chan reconcile.Result {
	snap, lines := a.restore(ctx)

	out := make(chan reconcile.Result, 1)
	go func() {
		result := <-a.Reconciler.ReconcileAsync(ctx)
		logInitialized(ctx, snap, lines, result)
		out <- result
	}()
	return out
}

func (a *App) restore(ctx context.Context) (domain.Session, []domain.CartLine) {
	return a.Session.Initialize(ctx), a.Cart.Load(ctx)
}

func logInitialized(ctx context.Context, snap domain.Session, lines []domain.CartLine, result reconcile.Result) {
	observability.FromContext(ctx).Info("storefront initialized",
		slog.Bool("logged_in", snap.IsLoggedIn),
		slog.Int("cart_lines", len(lines)),
		slog.String("reconcile", result.Outcome.String()),
	)
}

// Teardown flushes pending cart writes and stops the writer.
func (a *App) Teardown(ctx context.Context) error {
	if err := a.Cart.Close(ctx); err != nil {
		return fmt.Errorf("failed to close cart store: %w", err)
	}
	return nil
}
