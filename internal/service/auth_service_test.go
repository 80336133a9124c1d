package service

import (
	"context"
	"errors"
	"testing"

	"storefront-client/internal/domain"
	"storefront-client/internal/reconcile"
	"storefront-client/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful_login_replaces_cart_with_remote", func(t *testing.T) {
		f := newFixture(t)
		raw := testutil.NewTestToken(testutil.WithTokenUserID("u1"))
		f.auth.LoginFunc = func(_ context.Context, creds domain.Credentials) (string, error) {
			assert.Equal(t, "a@b.com", creds.Email)
			return raw, nil
		}
		f.carts.Carts["u1"] = []domain.CartLine{testutil.NewTestLine("P1", "M", 2)}
		f.cart.AddToCart("LOCAL", "S", 1)

		res, err := f.authService().Login(ctx, " a@b.com ", "secret")

		require.NoError(t, err)
		assert.True(t, res.Session.IsLoggedIn)
		assert.Equal(t, "u1", res.Session.UserID)
		assert.Equal(t, reconcile.OutcomeReplaced, res.Reconcile.Outcome)
		assert.Equal(t, []domain.CartLine{testutil.NewTestLine("P1", "M", 2)}, f.cart.Lines())
		assert.Equal(t, []string{domain.EventLoggedIn}, f.events.Types())
	})

	t.Run("empty_credentials", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.authService().Login(ctx, "", "secret")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejected_credentials", func(t *testing.T) {
		f := newFixture(t)
		f.auth.LoginFunc = func(context.Context, domain.Credentials) (string, error) {
			return "", domain.ErrUnauthorized
		}

		_, err := f.authService().Login(ctx, "a@b.com", "wrong")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.False(t, f.session.IsLoggedIn())
	})

	t.Run("remote_unavailable_is_not_credentials_error", func(t *testing.T) {
		f := newFixture(t)
		f.auth.LoginFunc = func(context.Context, domain.Credentials) (string, error) {
			return "", domain.ErrRemoteUnavailable
		}

		_, err := f.authService().Login(ctx, "a@b.com", "secret")

		assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("empty_token_from_backend", func(t *testing.T) {
		f := newFixture(t)
		f.auth.LoginFunc = func(context.Context, domain.Credentials) (string, error) {
			return "", nil
		}

		_, err := f.authService().Login(ctx, "a@b.com", "secret")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("expired_token_is_held_but_not_logged_in", func(t *testing.T) {
		f := newFixture(t)
		raw := testutil.NewTestToken(testutil.WithExpired())
		f.auth.LoginFunc = func(context.Context, domain.Credentials) (string, error) {
			return raw, nil
		}

		res, err := f.authService().Login(ctx, "a@b.com", "secret")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		require.NotNil(t, res)
		assert.False(t, res.Session.IsLoggedIn)
		assert.Equal(t, raw, f.session.Token())
		assert.Empty(t, f.events.Types())
	})

	t.Run("remote_cart_failure_keeps_local_cart", func(t *testing.T) {
		f := newFixture(t)
		f.auth.LoginFunc = func(context.Context, domain.Credentials) (string, error) {
			return testutil.NewTestToken(testutil.WithTokenUserID("u1")), nil
		}
		f.carts.FetchCartFunc = func(context.Context, string) ([]domain.CartLine, error) {
			return nil, errors.New("boom")
		}
		f.cart.AddToCart("LOCAL", "S", 1)

		res, err := f.authService().Login(ctx, "a@b.com", "secret")

		require.NoError(t, err)
		assert.Equal(t, reconcile.OutcomeFailed, res.Reconcile.Outcome)
		assert.Equal(t, []domain.CartLine{testutil.NewTestLine("LOCAL", "S", 1)}, f.cart.Lines())
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "new@example.com", password: "secret1"},
		{name: "invalid_email", email: "not-an-email", password: "secret1", wantErr: domain.ErrInvalidInput},
		{name: "short_password", email: "new@example.com", password: "123", wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var called bool
			f.auth.RegisterFunc = func(context.Context, domain.Credentials) error {
				called = true
				return nil
			}

			err := f.authService().Register(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, called)
				return
			}
			require.NoError(t, err)
			assert.True(t, called)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t, "u1")
	f.cart.AddToCart("P1", "M", 1)

	snap := f.authService().Logout(ctx)

	assert.False(t, snap.IsLoggedIn)
	assert.Empty(t, f.session.Token())
	assert.Empty(t, f.cart.Lines())
	require.Len(t, f.events.Events, 1)
	assert.Equal(t, domain.EventLoggedOut, f.events.Events[0].Type)
	assert.Equal(t, "u1", f.events.Events[0].UserID)
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("requires_login", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.authService().Profile(ctx)

		assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	})

	t.Run("passes_session_token", func(t *testing.T) {
		f := newFixture(t)
		raw := f.login(t, "u1")
		f.auth.ProfileFunc = func(_ context.Context, tok string) (*domain.UserProfile, error) {
			assert.Equal(t, raw, tok)
			return testutil.NewTestProfile("a@b.com"), nil
		}

		profile, err := f.authService().Profile(ctx)

		require.NoError(t, err)
		assert.Equal(t, "a@b.com", profile.Email)
	})

	t.Run("update_requires_full_name", func(t *testing.T) {
		f := newFixture(t)
		f.login(t, "u1")

		err := f.authService().UpdateProfile(ctx, &domain.UserProfile{FullName: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
