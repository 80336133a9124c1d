package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"storefront-client/internal/observability"
)

// RequestLogger copies chi's request id into the logging context and echoes it
// back as X-Request-ID. It must run after chimw.RequestID.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimw.GetReqID(r.Context())
			if reqID == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(chimw.RequestIDHeader, reqID)
			ctx := observability.WithRequestID(r.Context(), reqID)

			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			observability.FromContext(ctx).Debug("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
