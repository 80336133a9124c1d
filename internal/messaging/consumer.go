package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"storefront-client/internal/domain"
)

// EventConsumer delivers storefront events from the broker to a handler,
// so that every server instance sees events published by any of them.
type EventConsumer struct {
	rmq        *RabbitMQ
	bindingKey string
	handle     func(domain.Event)
}

// NewEventConsumer binds to events whose type matches bindingKey ("#" for
// all of them).
func NewEventConsumer(rmq *RabbitMQ, bindingKey string, handle func(domain.Event)) *EventConsumer {
	if bindingKey == "" {
		bindingKey = "#"
	}
	return &EventConsumer{
		rmq:        rmq,
		bindingKey: bindingKey,
		handle:     handle,
	}
}

func (c *EventConsumer) Start(ctx context.Context) error {
	queue, err := c.rmq.channel.QueueDeclare(
		"",    // auto-generated name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare event queue: %w", err)
	}

	if err := c.rmq.channel.QueueBind(
		queue.Name,     // queue name
		c.bindingKey,   // routing key
		EventsExchange, // exchange
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind event queue: %w", err)
	}

	msgs, err := c.rmq.channel.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("started consuming storefront events",
		slog.String("queue", queue.Name),
		slog.String("binding", c.bindingKey))

	go func() {
		for {
			select {
			case <-ctx.Done():
				slog.Info("stopping event consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Warn("event consumer channel closed")
					return
				}

				var event domain.Event
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					slog.Error("error unmarshaling event",
						slog.String("error", err.Error()),
						slog.Int("body_size", len(msg.Body)))
					continue
				}
				c.handle(event)
			}
		}
	}()

	return nil
}
