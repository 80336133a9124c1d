package memory

import (
	"context"
	"testing"

	"storefront-client/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing_key_returns_not_found", func(t *testing.T) {
		store := NewKeyValueStore()

		_, err := store.Get(ctx, domain.CartKey)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("values_are_copied_in_and_out", func(t *testing.T) {
		store := NewKeyValueStore()
		value := []byte("abc")

		require.NoError(t, store.Set(ctx, domain.TokenKey, value))
		value[0] = 'x'

		got, err := store.Get(ctx, domain.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))

		got[0] = 'y'
		again, err := store.Get(ctx, domain.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		store := NewKeyValueStore()

		require.NoError(t, store.Set(ctx, domain.TokenKey, []byte("t")))
		require.NoError(t, store.Delete(ctx, domain.TokenKey))
		require.NoError(t, store.Delete(ctx, domain.TokenKey))

		_, err := store.Get(ctx, domain.TokenKey)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("cancelled_context_fails", func(t *testing.T) {
		store := NewKeyValueStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, store.Set(cctx, domain.TokenKey, []byte("t")), context.Canceled)
	})
}
