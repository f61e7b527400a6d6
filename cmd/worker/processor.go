package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
)

// OrderReader is the slice of the order store the worker needs.
type OrderReader interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, expected, next string) error
}

// IdempotencyWriter finalizes checkout-idempotency records once
// fulfillment settles.
type IdempotencyWriter interface {
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// MetricsRecorder emits fulfillment counters.
type MetricsRecorder interface {
	Count(ctx context.Context, name string) error
}

// Processor advances orders from pending to shipped as order-placed
// events arrive from the queue.
type Processor struct {
	orders      OrderReader
	idempotency IdempotencyWriter
	metrics     MetricsRecorder
	log         *zap.Logger

	// workDelay simulates fulfillment work; shortened in tests.
	workDelay time.Duration
}

// NewProcessor wires a Processor from concrete stores.
func NewProcessor(orderStore OrderReader, idemStore IdempotencyWriter, metrics MetricsRecorder, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		orders:      orderStore,
		idempotency: idemStore,
		metrics:     metrics,
		log:         log,
		workDelay:   200 * time.Millisecond,
	}
}

// Handle processes an SQS batch. A failed message fails the batch so the
// runtime retries it; repeated failures land in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	p.log.Info("received sqs batch", zap.Int("messages", len(ev.Records)))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("message processing failed", zap.String("message_id", rec.MessageId), zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev awsx.OrderPlacedEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log := p.log.With(zap.String("order_id", ev.OrderID))
	log.Info("processing order placed event",
		zap.String("owner_id", ev.OwnerID),
		zap.String("idempotency_key", ev.IdempotencyKey))

	order, err := p.orders.Get(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if order == nil {
		// Should never happen; surface it so the message lands in the DLQ.
		return fmt.Errorf("order not found: %s", ev.OrderID)
	}

	err = p.orders.UpdateStatus(ctx, ev.OrderID, orders.StatusPending, orders.StatusProcessing)
	if errors.Is(err, orders.ErrStatusMismatch) {
		return p.resolveMismatch(ctx, ev, log)
	}
	if err != nil {
		return fmt.Errorf("advance to processing: %w", err)
	}

	// Simulated fulfillment work: picking, packing, label purchase.
	select {
	case <-time.After(p.workDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := p.orders.UpdateStatus(ctx, ev.OrderID, orders.StatusProcessing, orders.StatusShipped); err != nil {
		return fmt.Errorf("advance to shipped: %w", err)
	}

	if p.metrics != nil {
		if merr := p.metrics.Count(ctx, awsx.MetricOrdersFulfilled); merr != nil {
			log.Warn("metric emit failed", zap.Error(merr))
		}
	}

	if ev.IdempotencyKey != "" && p.idempotency != nil {
		body := fmt.Sprintf(`{"order_id":%q,"status":%q}`, ev.OrderID, orders.StatusShipped)
		if err := p.idempotency.MarkDone(ctx, ev.IdempotencyKey, body, http.StatusOK); err != nil {
			return fmt.Errorf("finalize idempotency record: %w", err)
		}
	}

	log.Info("order shipped")
	return nil
}

// resolveMismatch handles the pending->processing condition failing:
// either a duplicate delivery, a competing worker, or a cancellation
// that raced the queue.
func (p *Processor) resolveMismatch(ctx context.Context, ev awsx.OrderPlacedEvent, log *zap.Logger) error {
	order, err := p.orders.Get(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("re-read order after status mismatch: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order vanished after status mismatch: %s", ev.OrderID)
	}

	switch order.Status {
	case orders.StatusShipped, orders.StatusDelivered:
		log.Info("order already fulfilled", zap.String("status", order.Status))
		return nil
	case orders.StatusProcessing:
		log.Info("duplicate event, another worker is processing")
		return nil
	case orders.StatusCancelled:
		if ev.IdempotencyKey != "" && p.idempotency != nil {
			note := fmt.Sprintf("order %s cancelled before fulfillment", ev.OrderID)
			if err := p.idempotency.MarkFailed(ctx, ev.IdempotencyKey, note); err != nil {
				return fmt.Errorf("mark idempotency failed: %w", err)
			}
		}
		log.Info("order cancelled, skipping fulfillment")
		return nil
	default:
		return fmt.Errorf("unexpected status %q for order %s", order.Status, ev.OrderID)
	}
}
