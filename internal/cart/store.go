// Package cart is the authoritative in-memory cart with best-effort
// durable persistence.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
)

const writeTimeout = 5 * time.Second

var ErrClosed = errors.New("cart store closed")

type Option func(*Store)

// WithFailureReporter receives persistence failures in addition to the log.
func WithFailureReporter(r domain.FailureReporter) Option {
	return func(s *Store) { s.report = observability.FailureReporter(r) }
}

// Store applies mutations synchronously in call order and enqueues the
// resulting snapshot for a single writer goroutine. Pending snapshots are
// coalesced, so storage always converges on the latest state. Write
// failures never roll back memory.
type Store struct {
	kv     domain.KeyValueStore
	report domain.FailureReporter

	mu          sync.RWMutex
	lines       []domain.CartLine
	pending     []byte
	subscribers []func([]domain.CartLine)
	// outbox holds snapshots in mutation order until delivered; delivering
	// marks the goroutine currently draining it.
	outbox     [][]domain.CartLine
	delivering bool

	wake     chan struct{}
	flushReq chan chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewStore starts the writer goroutine. Call Close to stop it.
func NewStore(kv domain.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		report:   observability.FailureReporter(nil),
		lines:    []domain.CartLine{},
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan struct{}),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Load replaces the in-memory cart with the persisted one. A missing key,
// a read failure or an unparseable value all yield an empty cart; the last
// two are reported.
func (s *Store) Load(ctx context.Context) []domain.CartLine {
	lines, err := s.read(ctx)
	if err != nil {
		s.report.Report(domain.FailurePersistence, "cart.load", err)
		lines = []domain.CartLine{}
	}

	s.mu.Lock()
	s.lines = lines
	snap := domain.CloneLines(lines)
	drain := s.enqueueLocked(snap)
	s.mu.Unlock()

	if drain {
		s.deliver()
	}
	return snap
}

func (s *Store) read(ctx context.Context) ([]domain.CartLine, error) {
	data, err := s.kv.Get(ctx, domain.CartKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse cart: %w", err)
	}
	return domain.CloneLines(lines), nil
}

// AddToCart increments the quantity of the (productID, size) line, or
// appends a new line.
func (s *Store) AddToCart(productID, size string, quantity int) []domain.CartLine {
	return s.mutate("add", func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].Matches(productID, size) {
				lines[i].Quantity += quantity
				return lines
			}
		}
		return append(lines, domain.CartLine{ProductID: productID, Quantity: quantity, Size: size})
	})
}

// RemoveFromCart deletes the matching line. Missing lines are a no-op.
func (s *Store) RemoveFromCart(productID, size string) []domain.CartLine {
	return s.mutate("remove", func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].Matches(productID, size) {
				return append(lines[:i], lines[i+1:]...)
			}
		}
		return lines
	})
}

// UpdateQuantity sets the quantity of the matching line as given. Callers
// clamp.
func (s *Store) UpdateQuantity(productID, size string, quantity int) []domain.CartLine {
	return s.mutate("update_quantity", func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].Matches(productID, size) {
				lines[i].Quantity = quantity
				break
			}
		}
		return lines
	})
}

// Increment adds one to the matching line.
func (s *Store) Increment(productID, size string) []domain.CartLine {
	return s.mutate("increment", func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].Matches(productID, size) {
				lines[i].Quantity++
				break
			}
		}
		return lines
	})
}

// Decrement subtracts one from the matching line but never goes below 1.
func (s *Store) Decrement(productID, size string) []domain.CartLine {
	return s.mutate("decrement", func(lines []domain.CartLine) []domain.CartLine {
		for i := range lines {
			if lines[i].Matches(productID, size) {
				lines[i].Quantity = max(1, lines[i].Quantity-1)
				break
			}
		}
		return lines
	})
}

func (s *Store) ClearCart() []domain.CartLine {
	return s.mutate("clear", func([]domain.CartLine) []domain.CartLine {
		return []domain.CartLine{}
	})
}

// SetCart replaces the cart wholesale.
func (s *Store) SetCart(lines []domain.CartLine) []domain.CartLine {
	replacement := domain.CloneLines(lines)
	return s.mutate("set", func([]domain.CartLine) []domain.CartLine {
		return replacement
	})
}

// Lines returns a copy of the current cart.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneLines(s.lines)
}

// Len is the number of lines, shown as the cart badge.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) Quantity(productID, size string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.Matches(productID, size) {
			return l.Quantity, true
		}
	}
	return 0, false
}

// Subscribe registers fn to receive the cart after every mutation. Calls
// are never concurrent and arrive in mutation order, so a slow subscriber
// delays later deliveries but not the mutations themselves.
func (s *Store) Subscribe(fn func([]domain.CartLine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers[:len(s.subscribers):len(s.subscribers)], fn)
}

func (s *Store) mutate(op string, apply func([]domain.CartLine) []domain.CartLine) []domain.CartLine {
	s.mu.Lock()
	next := apply(domain.CloneLines(s.lines))
	if next == nil {
		next = []domain.CartLine{}
	}
	s.lines = next
	snap := domain.CloneLines(next)
	data, err := json.Marshal(snap)
	if err == nil {
		s.pending = data
	}
	drain := s.enqueueLocked(snap)
	s.mu.Unlock()

	observability.CartMutationsTotal.WithLabelValues(op).Inc()
	if err != nil {
		s.report.Report(domain.FailurePersistence, "cart."+op, fmt.Errorf("failed to encode cart: %w", err))
	} else {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}

	if drain {
		s.deliver()
	}
	return snap
}

// enqueueLocked queues snap for subscribers and reports whether the caller
// must drain the outbox. Must be called with s.mu held.
func (s *Store) enqueueLocked(snap []domain.CartLine) bool {
	if len(s.subscribers) == 0 {
		return false
	}
	s.outbox = append(s.outbox, snap)
	if s.delivering {
		return false
	}
	s.delivering = true
	return true
}

// deliver hands queued snapshots to subscribers one at a time, in the order
// the mutations were applied. Snapshots queued by other goroutines (or by a
// subscriber mutating the cart) while this runs are delivered here too.
func (s *Store) deliver() {
	for {
		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.outbox = nil
			s.delivering = false
			s.mu.Unlock()
			return
		}
		snap := s.outbox[0]
		s.outbox = s.outbox[1:]
		subs := s.subscribers
		s.mu.Unlock()

		notify(subs, snap)
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.writePending()
		case reply := <-s.flushReq:
			s.writePending()
			close(reply)
		case <-s.quit:
			s.writePending()
			return
		}
	}
}

func (s *Store) writePending() {
	s.mu.Lock()
	data := s.pending
	s.pending = nil
	s.mu.Unlock()

	if data == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	err := s.kv.Set(ctx, domain.CartKey, data)
	observability.CartPersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.report.Report(domain.FailurePersistence, "cart.persist", err)
	}
}

// Flush blocks until every snapshot enqueued before the call has been
// written or has failed.
func (s *Store) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case s.flushReq <- reply:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending snapshot and stops the writer. Mutations after
// Close still update memory but are no longer persisted.
func (s *Store) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.quit) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func notify(subs []func([]domain.CartLine), lines []domain.CartLine) {
	for _, fn := range subs {
		fn(domain.CloneLines(lines))
	}
}
