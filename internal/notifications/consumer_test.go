package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"product-catalog/internal/products"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ackRecorder struct {
	acked    []uint64
	nacked   []uint64
	requeued []bool
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeued = append(a.requeued, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const createdBody = `{"event_type":"product_created","product_id":1,"name":"Test Product","price":"19.99","timestamp":"2026-10-01T12:00:00Z"}`

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  string
		wantType string
	}{
		{
			name:     "created event",
			body:     createdBody,
			wantType: products.EventCreated,
		},
		{
			name:     "updated event",
			body:     `{"event_type":"product_updated","product_id":1,"name":"Updated Product","price":"29.99","timestamp":"2026-10-01T12:00:00Z"}`,
			wantType: products.EventUpdated,
		},
		{
			name:     "deleted event",
			body:     `{"event_type":"product_deleted","product_id":1,"timestamp":"2026-10-01T12:00:00Z"}`,
			wantType: products.EventDeleted,
		},
		{
			name:    "malformed json",
			body:    `not json`,
			wantErr: "unmarshal event",
		},
		{
			name:    "unknown event type",
			body:    `{"event_type":"product_archived","product_id":1}`,
			wantErr: `unknown event type "product_archived"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decodeEvent([]byte(tt.body))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.EventType != tt.wantType {
				t.Fatalf("want event type %q, got %q", tt.wantType, event.EventType)
			}
		})
	}
}

func TestConsumer_Process(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		redelivered bool
		handlerErr  error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "handled event is acked", body: createdBody, wantAck: true},
		{name: "malformed payload is dropped", body: `{`},
		{name: "handler failure is requeued", body: createdBody, handlerErr: errors.New("smtp down"), wantRequeue: true},
		{name: "second failure is dropped", body: createdBody, redelivered: true, handlerErr: errors.New("smtp down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecorder{}
			c := &Consumer{
				handle: func(context.Context, products.ProductEvent) error { return tt.handlerErr },
				logger: discardLogger(),
			}

			c.process(context.Background(), amqp.Delivery{
				Acknowledger: rec,
				DeliveryTag:  7,
				Body:         []byte(tt.body),
				Redelivered:  tt.redelivered,
			})

			if tt.wantAck {
				if len(rec.acked) != 1 || len(rec.nacked) != 0 {
					t.Fatalf("want single ack, got acked=%v nacked=%v", rec.acked, rec.nacked)
				}
				return
			}
			if len(rec.nacked) != 1 || len(rec.acked) != 0 {
				t.Fatalf("want single nack, got acked=%v nacked=%v", rec.acked, rec.nacked)
			}
			if rec.requeued[0] != tt.wantRequeue {
				t.Fatalf("want requeue=%v, got %v", tt.wantRequeue, rec.requeued[0])
			}
		})
	}
}

func TestConsumer_Drain(t *testing.T) {
	rec := &ackRecorder{}
	var handled []int64
	c := &Consumer{
		handle: func(_ context.Context, e products.ProductEvent) error {
			handled = append(handled, e.ProductID)
			return nil
		},
		logger: discardLogger(),
	}

	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 1, Body: []byte(createdBody)}
	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 2, Body: []byte(`garbage`)}
	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 3, Body: []byte(createdBody)}
	close(deliveries)

	err := c.drain(context.Background(), deliveries)
	if !errors.Is(err, ErrDeliveriesClosed) {
		t.Fatalf("want ErrDeliveriesClosed, got %v", err)
	}
	if len(handled) != 2 {
		t.Fatalf("want 2 handled events, got %d", len(handled))
	}
	if len(rec.acked) != 2 || len(rec.nacked) != 1 || rec.nacked[0] != 2 {
		t.Fatalf("unexpected acks: acked=%v nacked=%v", rec.acked, rec.nacked)
	}
}

func TestConsumer_DrainStopsOnCancel(t *testing.T) {
	c := &Consumer{logger: discardLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.drain(ctx, make(chan amqp.Delivery)); err != nil {
		t.Fatalf("want nil on cancel, got %v", err)
	}
}

func TestLogHandler(t *testing.T) {
	var logs bytes.Buffer
	handle := LogHandler(slog.New(slog.NewJSONHandler(&logs, nil)))

	event, err := decodeEvent([]byte(createdBody))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["msg"] != "catalog notification" {
		t.Fatalf("want msg %q, got %v", "catalog notification", entry["msg"])
	}
	if entry["event_type"] != products.EventCreated {
		t.Fatalf("want event_type %q, got %v", products.EventCreated, entry["event_type"])
	}
	if entry["price"] != "19.99" {
		t.Fatalf("want price 19.99, got %v", entry["price"])
	}
}
