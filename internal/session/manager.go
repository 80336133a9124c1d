// Package session holds the authenticated state of the single local user.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
	"storefront-client/internal/token"
)

// TokenStore is the durable home of the raw credential.
type TokenStore interface {
	Save(ctx context.Context, raw string) error
	Load(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

type Option func(*Manager)

// WithClock overrides the clock used to evaluate token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithFailureReporter receives failures in addition to the log.
func WithFailureReporter(r domain.FailureReporter) Option {
	return func(m *Manager) { m.report = observability.FailureReporter(r) }
}

// Manager tracks {token, isLoggedIn}. isLoggedIn is recomputed on every
// transition and never cached across them. Each transition bumps the epoch,
// which in-flight work compares against to detect that the session changed
// underneath it.
type Manager struct {
	store  TokenStore
	now    func() time.Time
	report domain.FailureReporter

	// writeMu orders persistence so storage ends in the state of the last
	// transition.
	writeMu sync.Mutex

	mu          sync.RWMutex
	token       string
	loggedIn    bool
	userID      string
	epoch       uint64
	subscribers []func(domain.Session)
}

func NewManager(store TokenStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		report: observability.FailureReporter(nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize restores a persisted token. Read failures leave the manager
// logged out.
func (m *Manager) Initialize(ctx context.Context) domain.Session {
	raw, found, err := m.store.Load(ctx)
	if err != nil {
		m.fail(ctx, domain.FailurePersistence, "session.initialize", err)
		return m.Snapshot()
	}
	if !found {
		return m.Snapshot()
	}
	return m.SetToken(ctx, raw)
}

// SetToken persists raw and makes it the current credential. An invalid or
// expired token is still held, but leaves the session logged out.
func (m *Manager) SetToken(ctx context.Context, raw string) domain.Session {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	loggedIn := token.IsValidAt(raw, m.now())
	var userID string
	if claims, ok := token.Decode(raw); ok {
		if loggedIn {
			userID, _ = claims.SubjectID()
		}
	} else if raw != "" {
		m.fail(ctx, domain.FailureMalformedCredential, "session.set_token", errMalformedToken)
	}

	m.mu.Lock()
	m.token = raw
	m.loggedIn = loggedIn
	m.userID = userID
	m.epoch++
	snap := m.snapshotLocked()
	subs := m.subscribers
	m.mu.Unlock()

	if err := m.store.Save(ctx, raw); err != nil {
		m.fail(ctx, domain.FailurePersistence, "session.set_token", err)
	}

	notify(subs, snap)
	return snap
}

// ClearToken drops the credential from memory and storage.
func (m *Manager) ClearToken(ctx context.Context) domain.Session {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	m.token = ""
	m.loggedIn = false
	m.userID = ""
	m.epoch++
	snap := m.snapshotLocked()
	subs := m.subscribers
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.fail(ctx, domain.FailurePersistence, "session.clear_token", err)
	}

	notify(subs, snap)
	return snap
}

func (m *Manager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loggedIn
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) Epoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// IfEpoch runs fn only while the epoch still equals epoch. No transition can
// complete while fn runs, so fn must not call back into the Manager.
func (m *Manager) IfEpoch(epoch uint64, fn func()) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.epoch != epoch {
		return false
	}
	fn()
	return true
}

// Claims returns the decoded claims of the held token while logged in.
func (m *Manager) Claims() (*token.Claims, bool) {
	m.mu.RLock()
	raw, loggedIn := m.token, m.loggedIn
	m.mu.RUnlock()

	if !loggedIn {
		return nil, false
	}
	return token.Decode(raw)
}

// Subscribe registers fn to receive a snapshot after every transition.
func (m *Manager) Subscribe(fn func(domain.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers[:len(m.subscribers):len(m.subscribers)], fn)
}

func (m *Manager) snapshotLocked() domain.Session {
	return domain.Session{
		Token:      m.token,
		IsLoggedIn: m.loggedIn,
		UserID:     m.userID,
		Epoch:      m.epoch,
	}
}

func (m *Manager) fail(ctx context.Context, kind domain.FailureKind, op string, err error) {
	observability.FromContext(ctx).Debug("session transition degraded", slog.String("op", op))
	m.report.Report(kind, op, err)
}

func notify(subs []func(domain.Session), snap domain.Session) {
	for _, fn := range subs {
		fn(snap)
	}
}
