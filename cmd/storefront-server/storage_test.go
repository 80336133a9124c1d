package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-client/internal/config"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("file_driver_uses_namespace_dir", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &config.Config{StorageDriver: config.StorageFile, StorageDir: dir, StorageNamespace: "shop"}

		s, err := openStorage(ctx, cfg)
		require.NoError(t, err)
		defer s.close()

		require.NoError(t, s.kv.Set(ctx, "cart", []byte(`[]`)))
		assert.FileExists(t, filepath.Join(dir, "shop", "cart.json"))

		meta, err := s.check(ctx)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "shop"), meta["dir"])
	})

	t.Run("memory_driver", func(t *testing.T) {
		s, err := openStorage(ctx, &config.Config{StorageDriver: config.StorageMemory})
		require.NoError(t, err)

		require.NoError(t, s.kv.Set(ctx, "token", []byte("abc")))
		got, err := s.kv.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
		assert.NoError(t, s.close())
	})

	t.Run("redis_driver", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{StorageDriver: config.StorageRedis, RedisAddr: mr.Addr(), StorageNamespace: "shop"}

		s, err := openStorage(ctx, cfg)
		require.NoError(t, err)
		defer s.close()

		require.NoError(t, s.kv.Set(ctx, "cart", []byte(`[]`)))
		assert.True(t, mr.Exists("shop:cart"))

		_, err = s.check(ctx)
		assert.NoError(t, err)

		mr.Close()
		_, err = s.check(ctx)
		assert.Error(t, err)
	})

	t.Run("unknown_driver", func(t *testing.T) {
		_, err := openStorage(ctx, &config.Config{StorageDriver: "sqlite"})
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}
