package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"rentalmate/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing booking lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBookingConfirmed publishes a BookingConfirmed event
func (ep *EventPublisher) PublishBookingConfirmed(ctx context.Context, event *models.BookingConfirmedEvent) error {
	return ep.producer.PublishEvent(ctx, event.BookingRef, event)
}

// PublishBookingCancelled publishes a BookingCancelled event
func (ep *EventPublisher) PublishBookingCancelled(ctx context.Context, event *models.BookingCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, event.BookingRef, event)
}

// PublishBookingStatusChanged publishes a BookingStatusChanged event
func (ep *EventPublisher) PublishBookingStatusChanged(ctx context.Context, event *models.BookingStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, event.BookingRef, event)
}

// EventHandler routes consumed booking events to registered callbacks
type EventHandler struct {
	onBookingConfirmed func(context.Context, *models.BookingConfirmedEvent) error
	onBookingCancelled func(context.Context, *models.BookingCancelledEvent) error
	onStatusChanged    func(context.Context, *models.BookingStatusChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnBookingConfirmed registers a handler for BookingConfirmed events
func (eh *EventHandler) OnBookingConfirmed(handler func(context.Context, *models.BookingConfirmedEvent) error) {
	eh.onBookingConfirmed = handler
}

// OnBookingCancelled registers a handler for BookingCancelled events
func (eh *EventHandler) OnBookingCancelled(handler func(context.Context, *models.BookingCancelledEvent) error) {
	eh.onBookingCancelled = handler
}

// OnStatusChanged registers a handler for BookingStatusChanged events
func (eh *EventHandler) OnStatusChanged(handler func(context.Context, *models.BookingStatusChangedEvent) error) {
	eh.onStatusChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeBookingConfirmed:
		if eh.onBookingConfirmed != nil {
			var event models.BookingConfirmedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookingConfirmed event: %w", err)
			}
			return eh.onBookingConfirmed(ctx, &event)
		}

	case models.EventTypeBookingCancelled:
		if eh.onBookingCancelled != nil {
			var event models.BookingCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookingCancelled event: %w", err)
			}
			return eh.onBookingCancelled(ctx, &event)
		}

	case models.EventTypeBookingStatusChanged:
		if eh.onStatusChanged != nil {
			var event models.BookingStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookingStatusChanged event: %w", err)
			}
			return eh.onStatusChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
