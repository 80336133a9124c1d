package messaging

import (
	"context"

	"storefront-client/internal/domain"
)

// Local hands events straight to Handle. It stands in for the broker when
// none is configured, so in-process observers still see every event.
type Local struct {
	Handle func(domain.Event)
}

func (l Local) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.Handle != nil {
		l.Handle(event)
	}
	return nil
}
