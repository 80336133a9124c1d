// Package reconcile replaces the local cart with the server-held cart when a
// session becomes authenticated.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
	"storefront-client/internal/token"
)

const DefaultTimeout = 5 * time.Second

var ErrNoSubject = errors.New("token has no subject id")

type Outcome int

const (
	// OutcomeSkipped: no valid session; the local cart stays authoritative.
	OutcomeSkipped Outcome = iota
	// OutcomeReplaced: the remote cart replaced the local one.
	OutcomeReplaced
	// OutcomeStale: the session changed while fetching; the result was dropped.
	OutcomeStale
	// OutcomeFailed: the fetch failed; the local cart was kept.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeStale:
		return "stale"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Items   []domain.CartLine
	Err     error
}

// Session is the view of the session manager reconciliation needs.
type Session interface {
	IsLoggedIn() bool
	Claims() (*token.Claims, bool)
	Epoch() uint64
	IfEpoch(epoch uint64, fn func()) bool
}

// Cart is the local cart the remote result is written into.
type Cart interface {
	SetCart(lines []domain.CartLine) []domain.CartLine
}

type Option func(*Service)

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithFailureReporter receives fetch failures in addition to the log.
func WithFailureReporter(r domain.FailureReporter) Option {
	return func(s *Service) { s.report = observability.FailureReporter(r) }
}

type Service struct {
	session Session
	cart    Cart
	remote  domain.CartRemote
	timeout time.Duration
	report  domain.FailureReporter
}

func NewService(session Session, cart Cart, remote domain.CartRemote, opts ...Option) *Service {
	s := &Service{
		session: session,
		cart:    cart,
		remote:  remote,
		timeout: DefaultTimeout,
		report:  observability.FailureReporter(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile fetches the remote cart of the logged-in user and makes it the
// local cart. Remote always wins; there is no merge. The result is applied
// only if the session epoch is unchanged when the fetch completes.
// Failures leave the local cart untouched and are not retried.
func (s *Service) Reconcile(ctx context.Context) Result {
	res := s.reconcile(ctx)
	observability.ReconcileOutcomesTotal.WithLabelValues(res.Outcome.String()).Inc()
	return res
}

func (s *Service) reconcile(ctx context.Context) Result {
	if !s.session.IsLoggedIn() {
		return Result{Outcome: OutcomeSkipped}
	}

	epoch := s.session.Epoch()
	claims, ok := s.session.Claims()
	if !ok {
		return Result{Outcome: OutcomeSkipped}
	}
	userID, ok := claims.SubjectID()
	if !ok {
		s.report.Report(domain.FailureMalformedCredential, "reconcile.subject", ErrNoSubject)
		return Result{Outcome: OutcomeFailed, Err: ErrNoSubject}
	}

	logger := observability.FromContext(observability.WithUserID(ctx, userID))

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.remote.FetchCart(fetchCtx, userID)
	if err != nil {
		err = fmt.Errorf("failed to fetch remote cart: %w", err)
		s.report.Report(domain.FailureRemoteFetch, "reconcile.fetch", err)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	var applied []domain.CartLine
	if !s.session.IfEpoch(epoch, func() { applied = s.cart.SetCart(items) }) {
		logger.Info("discarding stale remote cart",
			slog.Uint64("requested_epoch", epoch),
			slog.Uint64("current_epoch", s.session.Epoch()),
		)
		return Result{Outcome: OutcomeStale, Items: items}
	}

	logger.Info("remote cart applied", slog.Int("lines", len(applied)))
	return Result{Outcome: OutcomeReplaced, Items: applied}
}

// ReconcileAsync runs Reconcile on its own goroutine. The channel receives
// exactly one Result.
func (s *Service) ReconcileAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- s.Reconcile(ctx)
	}()
	return out
}
