package messaging

import (
	"context"
	"log/slog"

	"product-catalog/internal/products"
)

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct {
	logger *slog.Logger
}

func NewNopPublisher(logger *slog.Logger) *NopPublisher {
	return &NopPublisher{logger: logger}
}

func (p *NopPublisher) Publish(ctx context.Context, event products.ProductEvent) error {
	p.logger.DebugContext(ctx, "event publishing disabled, dropping event",
		"event_type", event.EventType,
		"product_id", event.ProductID,
	)
	return nil
}

func (p *NopPublisher) Close() error { return nil }
