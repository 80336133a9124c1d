package token

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/repository/memory"
	"storefront-client/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func craft(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecode(t *testing.T) {
	t.Run("reads_id_and_exp", func(t *testing.T) {
		claims, ok := Decode(craft(`{"id":"u1","exp":2000000000}`))
		require.True(t, ok)

		id, found := claims.SubjectID()
		assert.True(t, found)
		assert.Equal(t, "u1", id)
		require.NotNil(t, claims.ExpiresAt)
		assert.Equal(t, Expiry(2000000000), *claims.ExpiresAt)
	})

	t.Run("subject_falls_back_to_user_id_then_sub", func(t *testing.T) {
		claims, ok := Decode(craft(`{"userId":42}`))
		require.True(t, ok)
		id, _ := claims.SubjectID()
		assert.Equal(t, "42", id)

		claims, ok = Decode(craft(`{"sub":"s-9"}`))
		require.True(t, ok)
		id, _ = claims.SubjectID()
		assert.Equal(t, "s-9", id)

		claims, ok = Decode(craft(`{"email":"a@b.c"}`))
		require.True(t, ok)
		_, found := claims.SubjectID()
		assert.False(t, found)
	})

	t.Run("accepts_standard_alphabet_and_padding", func(t *testing.T) {
		payload := `{"id":"??>>","n":"~~~"}`
		std := base64.StdEncoding.EncodeToString([]byte(payload))

		claims, ok := Decode("h." + std + ".s")
		require.True(t, ok)
		assert.Equal(t, Identifier("??>>"), claims.AccountID)
	})

	t.Run("rejects_malformed_tokens", func(t *testing.T) {
		cases := map[string]string{
			"empty":         "",
			"one_segment":   "abc",
			"two_segments":  "abc.def",
			"four_segments": "a." + base64.RawURLEncoding.EncodeToString([]byte(`{}`)) + ".c.d",
			"empty_payload": "a..c",
			"bad_base64":    "a.!!!.c",
			"not_json":      "a." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".c",
			"json_array":    craft(`[1,2]`),
			"json_null":     craft(`null`),
		}
		for name, raw := range cases {
			t.Run(name, func(t *testing.T) {
				assert.NotPanics(t, func() {
					claims, ok := Decode(raw)
					assert.False(t, ok)
					assert.Nil(t, claims)
				})
			})
		}
	})

	t.Run("tolerates_odd_claim_types", func(t *testing.T) {
		claims, ok := Decode(craft(`{"id":{"x":1},"userId":true,"sub":42,"email":7,"aud":7,"iat":"yesterday"}`))
		require.True(t, ok)
		id, found := claims.SubjectID()
		assert.True(t, found)
		assert.Equal(t, "42", id)
		assert.Equal(t, Identifier("7"), claims.Email)
		assert.Nil(t, claims.ExpiresAt)
	})
}

func TestIsValidAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("future_exp_is_valid", func(t *testing.T) {
		assert.True(t, IsValidAt(craft(`{"id":"u","exp":1700000001}`), now))
	})

	t.Run("exp_equal_to_now_is_expired", func(t *testing.T) {
		assert.False(t, IsValidAt(craft(`{"id":"u","exp":1700000000}`), now))
	})

	t.Run("past_exp_is_expired", func(t *testing.T) {
		assert.False(t, IsValidAt(craft(`{"id":"u","exp":1600000000}`), now))
	})

	t.Run("zero_exp_is_expired", func(t *testing.T) {
		assert.False(t, IsValidAt(craft(`{"id":"u","exp":0}`), now))
	})

	t.Run("missing_exp_never_expires", func(t *testing.T) {
		assert.True(t, IsValidAt(craft(`{"id":"u"}`), now))
		assert.True(t, IsValidAt(craft(`{"id":"u","exp":null}`), now))
	})

	t.Run("fractional_exp_is_compared_in_milliseconds", func(t *testing.T) {
		assert.True(t, IsValidAt(craft(`{"id":"u1","exp":1700000000.5}`), now))
		assert.False(t, IsValidAt(craft(`{"id":"u1","exp":1699999999.999}`), now))
	})

	t.Run("numeric_string_exp_is_read_as_number", func(t *testing.T) {
		assert.True(t, IsValidAt(craft(`{"id":"u1","exp":"1700000060"}`), now))
	})

	t.Run("non_numeric_exp_is_expired", func(t *testing.T) {
		assert.False(t, IsValidAt(craft(`{"id":"u1","exp":"tomorrow"}`), now))
		assert.False(t, IsValidAt(craft(`{"id":"u1","exp":true}`), now))
	})

	t.Run("unrelated_claims_do_not_invalidate", func(t *testing.T) {
		for _, payload := range []string{
			`{"id":"u1","sub":42}`,
			`{"id":"u1","iat":"yesterday"}`,
			`{"id":"u1","aud":7}`,
			`{"id":true}`,
			`{"id":"u1","nbf":"soon","exp":1700000100}`,
		} {
			assert.True(t, IsValidAt(craft(payload), now), payload)
		}
	})

	t.Run("empty_and_undecodable_are_invalid", func(t *testing.T) {
		assert.False(t, IsValidAt("", now))
		assert.False(t, IsValidAt("abc.def", now))
	})
}

func TestSignedTokens(t *testing.T) {
	t.Run("fresh", func(t *testing.T) {
		raw := testutil.NewTestToken(testutil.WithTokenUserID("42"), testutil.WithTokenEmail("ana@example.com"))
		require.True(t, IsValid(raw))

		claims, ok := Decode(raw)
		require.True(t, ok)
		id, _ := claims.SubjectID()
		assert.Equal(t, "42", id)
		assert.Equal(t, Identifier("ana@example.com"), claims.Email)
	})

	t.Run("expired", func(t *testing.T) {
		assert.False(t, IsValid(testutil.NewTestToken(testutil.WithExpired())))
	})

	t.Run("no_expiry", func(t *testing.T) {
		raw := testutil.NewTestToken(testutil.WithoutExpiry())
		assert.True(t, IsValidAt(raw, time.Now().AddDate(50, 0, 0)))
	})
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Set(context.Context, string, []byte) error   { return f.err }
func (f failingKV) Delete(context.Context, string) error        { return f.err }

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save_load_clear", func(t *testing.T) {
		kv := memory.NewKeyValueStore()
		store := NewStore(kv)

		_, found, err := store.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, store.Save(ctx, "a.b.c"))
		raw, err := kv.Get(ctx, domain.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "a.b.c", string(raw))

		got, found, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "a.b.c", got)

		require.NoError(t, store.Clear(ctx))
		_, found, err = store.Load(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("storage_errors_are_wrapped", func(t *testing.T) {
		boom := errors.New("disk unavailable")
		store := NewStore(failingKV{err: boom})

		assert.ErrorIs(t, store.Save(ctx, "t"), boom)
		assert.ErrorIs(t, store.Clear(ctx), boom)
		_, _, err := store.Load(ctx)
		assert.ErrorIs(t, err, boom)
	})
}
