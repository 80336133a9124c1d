// Package catalog fetches the products referenced by a cart.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultConcurrency  = 8
	defaultFetchTimeout = 10 * time.Second
)

// Loader fetches products concurrently. Concurrent requests for the same id
// share a single remote call.
type Loader struct {
	catalog     domain.ProductCatalog
	group        singleflight.Group
	concurrency  int
	fetchTimeout time.Duration
	report       domain.FailureReporter
}

type Option func(*Loader)

func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithFetchTimeout bounds a shared product fetch. It applies instead of the
// callers' deadlines, since the fetch outlives any single caller.
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.fetchTimeout = d
		}
	}
}

func WithFailureReporter(r domain.FailureReporter) Option {
	return func(l *Loader) { l.report = observability.FailureReporter(r) }
}

func NewLoader(catalog domain.ProductCatalog, opts ...Option) *Loader {
	l := &Loader{
		catalog:      catalog,
		concurrency:  defaultConcurrency,
		fetchTimeout: defaultFetchTimeout,
		report:       observability.FailureReporter(nil),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Product fetches one product, sharing in-flight calls. The shared fetch is
// detached from ctx so one caller giving up does not fail the others; each
// caller still stops waiting when its own ctx is done.
func (l *Loader) Product(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := l.group.DoChan(id, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout)
		defer cancel()

		p, err := l.catalog.Product(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("%w: product %s has no id", domain.ErrMalformedResponse, id)
		}
		return p, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := *res.Val.(*domain.Product)
		return &p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load fetches every distinct product of lines. Products that fail to load
// are left out of the map and their errors returned; the caller decides
// whether a partial map is acceptable.
func (l *Loader) Load(ctx context.Context, lines []domain.CartLine) (domain.ProductMap, []error) {
	ids := distinctIDs(lines)
	products := make(domain.ProductMap, len(ids))

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			p, err := l.Product(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("product %s: %w", id, err)
				errs = append(errs, err)
				l.report.Report(domain.FailureRemoteFetch, "catalog.product", err)
				return nil
			}
			products[id] = *p
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		observability.FromContext(ctx).Info("cart products partially loaded",
			slog.Int("requested", len(ids)),
			slog.Int("failed", len(errs)),
		)
	}
	return products, errs
}

func distinctIDs(lines []domain.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
