package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"product-catalog/internal/products"
	"product-catalog/internal/products/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerTag   = "catalog-notifications"
	prefetchCount = 16
)

var ErrDeliveriesClosed = errors.New("delivery channel closed by broker")

// EventHandler reacts to a single decoded product event.
type EventHandler func(ctx context.Context, event products.ProductEvent) error

// LogHandler writes every event to logger.
func LogHandler(logger *slog.Logger) EventHandler {
	return func(ctx context.Context, event products.ProductEvent) error {
		logger.InfoContext(ctx, "catalog notification",
			"event_type", event.EventType,
			"product_id", event.ProductID,
			"name", event.Name,
			"price", event.Price,
			"timestamp", event.Timestamp,
		)
		return nil
	}
}

type Consumer struct {
	channel *amqp.Channel
	queue   string
	handle  EventHandler
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, handle EventHandler, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := messaging.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set prefetch: %w", err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		handle:  handle,
		logger:  logger,
	}, nil
}

// Listen processes deliveries until ctx is cancelled or the broker closes
// the channel.
func (c *Consumer) Listen(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}
	return c.drain(ctx, deliveries)
}

func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			c.process(ctx, d)
		}
	}
}

// process acks handled events. Undecodable payloads are dropped; handler
// failures are requeued once.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	event, err := decodeEvent(d.Body)
	if err != nil {
		c.logger.Error("discarding malformed event", "message_id", d.MessageId, "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := c.handle(ctx, event); err != nil {
		c.logger.Error("handle event failed",
			"message_id", d.MessageId,
			"event_type", event.EventType,
			"product_id", event.ProductID,
			"redelivered", d.Redelivered,
			"error", err,
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func decodeEvent(body []byte) (products.ProductEvent, error) {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return products.ProductEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}

	switch event.EventType {
	case products.EventCreated, products.EventUpdated, products.EventDeleted:
		return event, nil
	default:
		return products.ProductEvent{}, fmt.Errorf("unknown event type %q", event.EventType)
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
