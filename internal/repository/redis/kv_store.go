package redis

import (
	"context"
	"errors"
	"fmt"

	"storefront-client/internal/domain"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore implements domain.KeyValueStore on Redis strings. Values
// never expire: the token and cart outlive any process.
type KeyValueStore struct {
	client    *redis.Client
	namespace string
}

func NewKeyValueStore(client *redis.Client, namespace string) *KeyValueStore {
	return &KeyValueStore{client: client, namespace: namespace}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.storageKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *KeyValueStore) storageKey(key string) string {
	return fmt.Sprintf("%s:%s", s.namespace, key)
}
