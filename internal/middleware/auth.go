package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

// SessionSource exposes the current session without touching storage.
type SessionSource interface {
	Snapshot() domain.Session
}

// RequireLogin rejects requests while the session holds no valid token.
func RequireLogin(session SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := session.Snapshot()
			if !snap.IsLoggedIn {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.ErrNotLoggedIn.Error()})
				return
			}

			ctx := WithUserID(r.Context(), snap.UserID)
			ctx = WithSession(ctx, snap)
			ctx = observability.WithUserID(ctx, snap.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetSession(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(domain.Session)
	return session, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
