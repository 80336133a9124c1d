package domain

import (
	"context"
	"errors"
)

// Keys of the only on-device state the core depends on.
const (
	TokenKey = "token"
	CartKey  = "cart"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is durable key-value storage. Values are opaque bytes and
// must round-trip unchanged.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
