package observability

import (
	"log/slog"

	"storefront-client/internal/domain"
)

// FailureReporter logs each failure, counts it, then forwards it to next.
func FailureReporter(next domain.FailureReporter) domain.FailureReporter {
	return func(f domain.Failure) {
		FailuresTotal.WithLabelValues(f.Kind.String(), f.Op).Inc()
		current().Warn("recovered failure",
			slog.String("kind", f.Kind.String()),
			slog.String("op", f.Op),
			slog.String("error", f.Err.Error()),
		)
		if next != nil {
			next(f)
		}
	}
}
