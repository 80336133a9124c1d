package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"storefront-client/internal/config"
	"storefront-client/internal/domain"
	"storefront-client/internal/handler"
	"storefront-client/internal/repository/file"
	"storefront-client/internal/repository/memory"
	"storefront-client/internal/repository/postgres"
	"storefront-client/internal/repository/redis"
)

// storage is the durable key-value backend chosen by STORAGE_DRIVER
type storage struct {
	kv    domain.KeyValueStore
	check handler.Check
	close func() error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		dir := filepath.Join(cfg.StorageDir, cfg.StorageNamespace)
		kv, err := file.NewKeyValueStore(dir)
		if err != nil {
			return nil, err
		}
		return &storage{
			kv: kv,
			check: func(context.Context) (map[string]any, error) {
				if _, err := os.Stat(dir); err != nil {
					return nil, err
				}
				return map[string]any{"dir": dir}, nil
			},
			close: func() error { return nil },
		}, nil

	case config.StorageMemory:
		slog.Warn("using in-memory storage; the session and cart are lost on restart")
		return &storage{
			kv:    memory.NewKeyValueStore(),
			check: func(context.Context) (map[string]any, error) { return nil, nil },
			close: func() error { return nil },
		}, nil

	case config.StoragePostgres:
		db, err := config.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		kv, err := postgres.NewKeyValueStore(db, cfg.StorageNamespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			kv: kv,
			check: func(ctx context.Context) (map[string]any, error) {
				if err := db.PingContext(ctx); err != nil {
					return nil, err
				}
				stats := db.Stats()
				return map[string]any{
					"open_connections": stats.OpenConnections,
					"in_use":           stats.InUse,
				}, nil
			},
			close: func() error { return errors.Join(kv.Close(), db.Close()) },
		}, nil

	case config.StorageRedis:
		client, err := config.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return &storage{
			kv: redis.NewKeyValueStore(client, cfg.StorageNamespace),
			check: func(ctx context.Context) (map[string]any, error) {
				if err := client.Ping(ctx).Err(); err != nil {
					return nil, err
				}
				return map[string]any{"addr": cfg.RedisAddr}, nil
			},
			close: client.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
