package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failureLog struct {
	mu       sync.Mutex
	failures []domain.Failure
}

func (l *failureLog) report(f domain.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, f)
}

func (l *failureLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}

func newTestStore(t *testing.T, kv domain.KeyValueStore) (*Store, *failureLog) {
	t.Helper()
	log := &failureLog{}
	s := NewStore(kv, WithFailureReporter(log.report))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s, log
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestStore_AddToCart(t *testing.T) {
	t.Run("same_product_and_size_sums_quantities", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		s, _ := newTestStore(t, kv)

		s.AddToCart("P1", "M", 2)
		lines := s.AddToCart("P1", "M", 3)

		assert.Equal(t, []domain.CartLine{{ProductID: "P1", Quantity: 5, Size: "M"}}, lines)

		flush(t, s)
		stored, ok := kv.Value(domain.CartKey)
		require.True(t, ok)
		assert.Equal(t, `[{"id":"P1","quantity":5,"size":"M"}]`, stored)
	})

	t.Run("different_size_is_a_new_line", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())

		s.AddToCart("P1", "M", 1)
		lines := s.AddToCart("P1", "L", 1)

		require.Len(t, lines, 2)
		assert.Equal(t, "M", lines[0].Size)
		assert.Equal(t, "L", lines[1].Size)
		assert.Equal(t, 2, s.Len())
	})
}

func TestStore_RemoveAndUpdate(t *testing.T) {
	t.Run("remove_missing_line_is_noop", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 1)

		lines := s.RemoveFromCart("B", "S")

		assert.Equal(t, []domain.CartLine{{ProductID: "A", Quantity: 1, Size: "S"}}, lines)
	})

	t.Run("remove_matching_line_keeps_order", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 1)
		s.AddToCart("B", "S", 1)
		s.AddToCart("C", "S", 1)

		lines := s.RemoveFromCart("B", "S")

		require.Len(t, lines, 2)
		assert.Equal(t, "A", lines[0].ProductID)
		assert.Equal(t, "C", lines[1].ProductID)
	})

	t.Run("update_quantity_does_not_validate", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 3)

		s.UpdateQuantity("A", "S", 0)

		qty, ok := s.Quantity("A", "S")
		assert.True(t, ok)
		assert.Equal(t, 0, qty)
	})

	t.Run("decrement_clamps_at_one", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 2)

		s.Decrement("A", "S")
		s.Decrement("A", "S")

		qty, _ := s.Quantity("A", "S")
		assert.Equal(t, 1, qty)
	})

	t.Run("increment_adds_one", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 1)

		s.Increment("A", "S")
		s.Increment("missing", "S")

		qty, _ := s.Quantity("A", "S")
		assert.Equal(t, 2, qty)
		assert.Equal(t, 1, s.Len())
	})
}

func TestStore_ClearAndSet(t *testing.T) {
	t.Run("clear_persists_empty_array", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		s, _ := newTestStore(t, kv)
		s.AddToCart("A", "S", 1)

		lines := s.ClearCart()
		flush(t, s)

		assert.Empty(t, lines)
		assert.NotNil(t, lines)
		stored, _ := kv.Value(domain.CartKey)
		assert.Equal(t, `[]`, stored)
	})

	t.Run("set_cart_replaces_without_merge", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		s.AddToCart("A", "S", 1)

		remote := []domain.CartLine{{ProductID: "B", Quantity: 1, Size: "M"}, {ProductID: "C", Quantity: 2, Size: "L"}}
		s.SetCart(remote)
		remote[0].Quantity = 99

		lines := s.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "B", lines[0].ProductID)
		assert.Equal(t, 1, lines[0].Quantity)
	})

	t.Run("set_nil_yields_empty_cart", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		s, _ := newTestStore(t, kv)

		s.SetCart(nil)
		flush(t, s)

		stored, _ := kv.Value(domain.CartKey)
		assert.Equal(t, `[]`, stored)
	})
}

func TestStore_Persistence(t *testing.T) {
	t.Run("write_failure_keeps_memory_and_reports", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		kv.SetFunc = func(context.Context, string, []byte) error { return errors.New("disk full") }
		s, failures := newTestStore(t, kv)

		lines := s.AddToCart("A", "S", 1)
		flush(t, s)

		assert.Len(t, lines, 1)
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 1, failures.count())
	})

	t.Run("pending_writes_coalesce_to_latest_state", func(t *testing.T) {
		gate := make(chan struct{})
		var calls atomic.Int32
		var mu sync.Mutex
		var last string

		kv := testutil.NewMockKeyValueStore()
		kv.SetFunc = func(_ context.Context, _ string, value []byte) error {
			if calls.Add(1) == 1 {
				<-gate
			}
			mu.Lock()
			last = string(value)
			mu.Unlock()
			return nil
		}
		s, _ := newTestStore(t, kv)

		s.AddToCart("A", "S", 1)
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		for i := 0; i < 20; i++ {
			s.Increment("A", "S")
		}
		close(gate)
		flush(t, s)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, `[{"id":"A","quantity":21,"size":"S"}]`, last)
		assert.LessOrEqual(t, calls.Load(), int32(2))
	})

	t.Run("close_writes_pending_and_rejects_flush", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		s := NewStore(kv)
		s.AddToCart("A", "S", 4)

		require.NoError(t, s.Close(context.Background()))
		stored, _ := kv.Value(domain.CartKey)
		assert.Equal(t, `[{"id":"A","quantity":4,"size":"S"}]`, stored)
		assert.ErrorIs(t, s.Flush(context.Background()), ErrClosed)
	})
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("restores_persisted_cart", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		kv.Data[domain.CartKey] = []byte(`[{"id":"P1","quantity":2,"size":"M"}]`)
		s, failures := newTestStore(t, kv)

		lines := s.Load(ctx)

		assert.Equal(t, []domain.CartLine{{ProductID: "P1", Quantity: 2, Size: "M"}}, lines)
		assert.Zero(t, failures.count())
	})

	t.Run("missing_cart_is_empty_without_report", func(t *testing.T) {
		s, failures := newTestStore(t, testutil.NewMockKeyValueStore())

		assert.Empty(t, s.Load(ctx))
		assert.Zero(t, failures.count())
	})

	t.Run("corrupt_cart_is_empty_and_reported", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		kv.Data[domain.CartKey] = []byte(`{not json`)
		s, failures := newTestStore(t, kv)

		lines := s.Load(ctx)

		assert.Empty(t, lines)
		assert.Equal(t, 1, failures.count())
	})

	t.Run("null_cart_is_empty", func(t *testing.T) {
		kv := testutil.NewMockKeyValueStore()
		kv.Data[domain.CartKey] = []byte(`null`)
		s, _ := newTestStore(t, kv)

		lines := s.Load(ctx)

		assert.NotNil(t, lines)
		assert.Empty(t, lines)
	})
}

func TestStore_Subscribe(t *testing.T) {
	t.Run("receives_snapshot_after_each_mutation", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		var counts []int
		s.Subscribe(func(lines []domain.CartLine) { counts = append(counts, len(lines)) })

		s.AddToCart("A", "S", 1)
		s.AddToCart("B", "S", 1)
		s.ClearCart()

		assert.Equal(t, []int{1, 2, 0}, counts)
	})
}

func TestStore_SubscribeOrdering(t *testing.T) {
	t.Run("slow_subscriber_still_ends_on_latest_state", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())

		entered := make(chan struct{})
		release := make(chan struct{})
		var (
			mu    sync.Mutex
			seen  [][]domain.CartLine
			first atomic.Bool
		)
		s.Subscribe(func(lines []domain.CartLine) {
			if first.CompareAndSwap(false, true) {
				close(entered)
				<-release
			}
			mu.Lock()
			seen = append(seen, lines)
			mu.Unlock()
		})

		firstDone := make(chan struct{})
		go func() {
			defer close(firstDone)
			s.AddToCart("P1", "M", 1)
		}()
		<-entered

		// the second mutation completes while the first delivery is stuck
		s.AddToCart("P2", "M", 1)
		assert.Len(t, s.Lines(), 2)

		close(release)
		<-firstDone

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, seen, 2)
		assert.Equal(t, []domain.CartLine{{ProductID: "P1", Quantity: 1, Size: "M"}}, seen[0])
		assert.Equal(t, s.Lines(), seen[len(seen)-1])
	})

	t.Run("concurrent_mutations_are_delivered_in_apply_order", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())

		var (
			mu     sync.Mutex
			totals []int
			active atomic.Int32
		)
		s.Subscribe(func(lines []domain.CartLine) {
			assert.Equal(t, int32(1), active.Add(1), "subscriber called concurrently")
			total := 0
			for _, l := range lines {
				total += l.Quantity
			}
			mu.Lock()
			totals = append(totals, total)
			mu.Unlock()
			active.Add(-1)
		})

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.AddToCart("P1", "M", 1)
			}()
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, totals, 50)
		for i, total := range totals {
			assert.Equal(t, i+1, total)
		}
	})

	t.Run("subscriber_may_mutate_the_cart", func(t *testing.T) {
		s, _ := newTestStore(t, testutil.NewMockKeyValueStore())
		var counts []int
		s.Subscribe(func(lines []domain.CartLine) {
			counts = append(counts, len(lines))
			if len(lines) == 1 {
				s.AddToCart("B", "S", 1)
			}
		})

		s.AddToCart("A", "S", 1)

		assert.Equal(t, []int{1, 2}, counts)
	})
}
