package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// ServiceName is attached to every record written by the process logger
const ServiceName = "storefront-client"

var logger *slog.Logger

// NewLogger builds a structured logger writing to w. format is "json" or
// "text"; anything else falls back to text.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: strings.EqualFold(level, "debug"),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", ServiceName))
}

// InitLogger initializes the global structured logger on stdout
func InitLogger(level, format string) {
	SetLogger(NewLogger(os.Stdout, level, format))
}

// SetLogger replaces the global logger and slog's default
func SetLogger(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

func current() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// FromContext returns a logger with the request and user ids from ctx attached
func FromContext(ctx context.Context) *slog.Logger {
	l := current()

	attrs := make([]any, 0, 2)
	if reqID := RequestID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if userID, ok := ctx.Value(userIDKey).(string); ok && userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}

	if len(attrs) > 0 {
		return l.With(attrs...)
	}
	return l
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored by WithRequestID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Error(msg string, args ...any) { current().Error(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Debug(msg string, args ...any) { current().Debug(msg, args...) }
