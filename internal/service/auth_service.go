package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
	"storefront-client/internal/reconcile"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 6

type AuthService struct {
	remote     domain.AuthRemote
	session    SessionManager
	cart       CartStore
	reconciler Reconciler
	events     domain.EventPublisher
}

func NewAuthService(remote domain.AuthRemote, session SessionManager, cart CartStore, reconciler Reconciler, events domain.EventPublisher) *AuthService {
	return &AuthService{
		remote:     remote,
		session:    session,
		cart:       cart,
		reconciler: reconciler,
		events:     events,
	}
}

// LoginResult is the session after login and the outcome of the cart
// reconciliation it triggered.
type LoginResult struct {
	Session   domain.Session
	Reconcile reconcile.Result
}

// Login exchanges credentials for a token, makes it the session token and
// waits for the remote cart to replace the local one. A token that is
// issued but not valid is still held; the caller gets ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	raw, err := s.remote.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if raw == "" {
		return nil, domain.ErrInvalidCredentials
	}

	snap := s.session.SetToken(ctx, raw)
	if !snap.IsLoggedIn {
		return &LoginResult{Session: snap}, fmt.Errorf("%w: issued token is not valid", domain.ErrInvalidCredentials)
	}

	result := s.reconciler.Reconcile(ctx)
	observability.FromContext(ctx).Info("user logged in",
		slog.String("user_id", snap.UserID),
		slog.String("reconcile", result.Outcome.String()),
	)
	publish(ctx, s.events, domain.EventLoggedIn, snap.UserID, nil)

	return &LoginResult{Session: snap, Reconcile: result}, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) || len(email) > 255 {
		return fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	if err := s.remote.Register(ctx, domain.Credentials{Email: email, Password: password}); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	return nil
}

// Logout drops the token and empties the local cart.
func (s *AuthService) Logout(ctx context.Context) domain.Session {
	userID := s.session.Snapshot().UserID
	snap := s.session.ClearToken(ctx)
	s.cart.ClearCart()

	observability.FromContext(ctx).Info("user logged out", slog.String("user_id", userID))
	publish(ctx, s.events, domain.EventLoggedOut, userID, nil)
	return snap
}

func (s *AuthService) Session() domain.Session {
	return s.session.Snapshot()
}

func (s *AuthService) Profile(ctx context.Context) (*domain.UserProfile, error) {
	tok, _, err := currentUser(s.session)
	if err != nil {
		return nil, err
	}
	profile, err := s.remote.Profile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, profile *domain.UserProfile) error {
	tok, _, err := currentUser(s.session)
	if err != nil {
		return err
	}
	if profile == nil || strings.TrimSpace(profile.FullName) == "" {
		return fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}
	if err := s.remote.UpdateProfile(ctx, tok, profile); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
