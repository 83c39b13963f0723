package worker

import (
	"context"
	"fmt"
	"log"

	"rentalmate/internal/broker"
	"rentalmate/internal/models"
	"rentalmate/internal/util"

	"go.uber.org/zap"
)

// EventLedger records processed event IDs so redelivered messages are
// handled exactly once.
type EventLedger interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// NotificationWorker consumes booking events and fans out tenant/owner
// notifications. Delivery here is a structured log line; the mail and
// push channels live in a separate service that consumes the same topic.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	ledger       EventLedger
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, ledger EventLedger) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		ledger:   ledger,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnBookingConfirmed(w.handleConfirmed)
	eventHandler.OnBookingCancelled(w.handleCancelled)
	eventHandler.OnStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) alreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	processed, err := w.ledger.IsEventProcessed(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", eventID))
	}
	return processed, nil
}

func (w *NotificationWorker) handleConfirmed(ctx context.Context, event *models.BookingConfirmedEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	w.logger.Info("Notify booking confirmed",
		zap.String("booking_ref", event.BookingRef),
		zap.Int64("tenant_id", event.TenantID),
		zap.Int64("owner_id", event.OwnerID),
		zap.Float64("total", event.Total))

	return w.ledger.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleCancelled(ctx context.Context, event *models.BookingCancelledEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	w.logger.Info("Notify booking cancelled",
		zap.String("booking_ref", event.BookingRef),
		zap.Int64("tenant_id", event.TenantID),
		zap.Int64("owner_id", event.OwnerID),
		zap.String("reason", event.Reason),
		zap.Float64("refund_amount", event.RefundAmount))

	return w.ledger.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleStatusChanged(ctx context.Context, event *models.BookingStatusChangedEvent) error {
	processed, err := w.alreadyProcessed(ctx, event.EventID)
	if err != nil || processed {
		return err
	}

	w.logger.Info("Notify booking status changed",
		zap.String("booking_ref", event.BookingRef),
		zap.Int64("tenant_id", event.TenantID),
		zap.String("from", event.OldStatus),
		zap.String("to", event.NewStatus))

	return w.ledger.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
