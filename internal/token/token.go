// Package token persists the bearer credential and reads the claims in its
// payload. Signatures are never verified here: the backend does that.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-client/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the claims of a three-segment token. It reports false for
// anything it cannot read and never panics.
func Decode(raw string) (*Claims, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, false
	}

	segment := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])
	payload, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return nil, false
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '{' {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}

// IsValidAt reports whether raw decodes and exp*1000 is after now in
// milliseconds. A token without exp never expires.
func IsValidAt(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}
	claims, ok := Decode(raw)
	if !ok {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.UnixMilli() > float64(now.UnixMilli())
}

func IsValid(raw string) bool {
	return IsValidAt(raw, time.Now())
}

// Store persists the raw credential under domain.TokenKey.
type Store struct {
	kv domain.KeyValueStore
}

func NewStore(kv domain.KeyValueStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) Save(ctx context.Context, raw string) error {
	if err := s.kv.Set(ctx, domain.TokenKey, []byte(raw)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the persisted token. A missing or empty value is reported as
// not found rather than as an error.
func (s *Store) Load(ctx context.Context) (string, bool, error) {
	data, err := s.kv.Get(ctx, domain.TokenKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load token: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, domain.TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
