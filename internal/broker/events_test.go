package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"rentalmate/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalMessage(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestEventHandlerRouting(t *testing.T) {
	handler := NewEventHandler()

	var confirmed *models.BookingConfirmedEvent
	var cancelled *models.BookingCancelledEvent
	var changed *models.BookingStatusChangedEvent

	handler.OnBookingConfirmed(func(ctx context.Context, e *models.BookingConfirmedEvent) error {
		confirmed = e
		return nil
	})
	handler.OnBookingCancelled(func(ctx context.Context, e *models.BookingCancelledEvent) error {
		cancelled = e
		return nil
	})
	handler.OnStatusChanged(func(ctx context.Context, e *models.BookingStatusChangedEvent) error {
		changed = e
		return nil
	})

	base := models.BaseEvent{
		EventID:   "evt-1",
		EventType: models.EventTypeBookingConfirmed,
		Timestamp: time.Now().UTC(),
	}

	msg := marshalMessage(t, &models.BookingConfirmedEvent{
		BaseEvent:  base,
		BookingID:  7,
		BookingRef: "BK12345678001",
		TenantID:   11,
		OwnerID:    21,
		PGID:       1,
		RoomType:   models.RoomTypeSingle,
		Total:      32800,
	})
	require.NoError(t, handler.HandleMessage(context.Background(), msg))
	require.NotNil(t, confirmed)
	assert.Equal(t, "BK12345678001", confirmed.BookingRef)
	assert.Equal(t, 32800.0, confirmed.Total)
	assert.Nil(t, cancelled)
	assert.Nil(t, changed)

	base.EventID = "evt-2"
	base.EventType = models.EventTypeBookingCancelled
	msg = marshalMessage(t, &models.BookingCancelledEvent{
		BaseEvent:    base,
		BookingID:    7,
		BookingRef:   "BK12345678001",
		CancelledBy:  11,
		Reason:       "plans changed",
		RefundAmount: 32800,
	})
	require.NoError(t, handler.HandleMessage(context.Background(), msg))
	require.NotNil(t, cancelled)
	assert.Equal(t, "plans changed", cancelled.Reason)

	base.EventID = "evt-3"
	base.EventType = models.EventTypeBookingStatusChanged
	msg = marshalMessage(t, &models.BookingStatusChangedEvent{
		BaseEvent:  base,
		BookingID:  7,
		BookingRef: "BK12345678001",
		OldStatus:  models.BookingStatusConfirmed,
		NewStatus:  models.BookingStatusActive,
	})
	require.NoError(t, handler.HandleMessage(context.Background(), msg))
	require.NotNil(t, changed)
	assert.Equal(t, models.BookingStatusActive, changed.NewStatus)
}

func TestEventHandlerUnknownType(t *testing.T) {
	handler := NewEventHandler()

	called := false
	handler.OnBookingConfirmed(func(ctx context.Context, e *models.BookingConfirmedEvent) error {
		called = true
		return nil
	})

	msg := marshalMessage(t, &models.BaseEvent{
		EventID:   "evt-4",
		EventType: "SOMETHING_ELSE",
		Timestamp: time.Now().UTC(),
	})
	assert.NoError(t, handler.HandleMessage(context.Background(), msg))
	assert.False(t, called)
}

func TestEventHandlerBadPayload(t *testing.T) {
	handler := NewEventHandler()
	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
