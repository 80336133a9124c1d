package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-client/internal/domain"
)

// KeyValueStore implements domain.KeyValueStore on the kv_store table.
// Every key is scoped to a namespace so several devices can share a database.
type KeyValueStore struct {
	db         *sql.DB
	namespace  string
	getStmt    *sql.Stmt
	upsertStmt *sql.Stmt
	deleteStmt *sql.Stmt
}

// NewKeyValueStore creates a KeyValueStore with prepared statements.
// Returns an error if statement preparation fails.
func NewKeyValueStore(db *sql.DB, namespace string) (*KeyValueStore, error) {
	store := &KeyValueStore{db: db, namespace: namespace}

	var err error
	store.getStmt, err = db.Prepare(`
		SELECT value FROM kv_store
		WHERE namespace = $1 AND key = $2
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare get statement: %w", err)
	}

	store.upsertStmt, err = db.Prepare(`
		INSERT INTO kv_store (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	store.deleteStmt, err = db.Prepare(`DELETE FROM kv_store WHERE namespace = $1 AND key = $2`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return store, nil
}

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.getStmt.QueryRowContext(ctx, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.upsertStmt.ExecContext(ctx, s.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close releases the prepared statements.
func (s *KeyValueStore) Close() error {
	return errors.Join(s.getStmt.Close(), s.upsertStmt.Close(), s.deleteStmt.Close())
}
