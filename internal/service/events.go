package service

import (
	"context"
	"log/slog"
	"time"

	"storefront-client/internal/domain"
	"storefront-client/internal/observability"

	"github.com/google/uuid"
)

// publish hands an event to the broker. Failures are logged only.
func publish(ctx context.Context, pub domain.EventPublisher, eventType, userID string, payload any) {
	if pub == nil {
		return
	}
	event := domain.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := pub.Publish(ctx, event); err != nil {
		observability.FromContext(ctx).Warn("failed to publish event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
