package models

import "time"

// Event types
const (
	EventTypeBookingConfirmed     = "BOOKING_CONFIRMED"
	EventTypeBookingCancelled     = "BOOKING_CANCELLED"
	EventTypeBookingStatusChanged = "BOOKING_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingConfirmedEvent published when payment verification creates a booking
type BookingConfirmedEvent struct {
	BaseEvent
	BookingID  int64   `json:"booking_id"`
	BookingRef string  `json:"booking_ref"`
	TenantID   int64   `json:"tenant_id"`
	OwnerID    int64   `json:"owner_id"`
	PGID       int64   `json:"pg_id"`
	RoomType   string  `json:"room_type"`
	Total      float64 `json:"total"`
}

// BookingCancelledEvent published when a booking is cancelled
type BookingCancelledEvent struct {
	BaseEvent
	BookingID    int64   `json:"booking_id"`
	BookingRef   string  `json:"booking_ref"`
	TenantID     int64   `json:"tenant_id"`
	OwnerID      int64   `json:"owner_id"`
	PGID         int64   `json:"pg_id"`
	RoomType     string  `json:"room_type"`
	CancelledBy  int64   `json:"cancelled_by"`
	Reason       string  `json:"reason"`
	RefundAmount float64 `json:"refund_amount"`
}

// BookingStatusChangedEvent published on owner/admin status updates
type BookingStatusChangedEvent struct {
	BaseEvent
	BookingID  int64  `json:"booking_id"`
	BookingRef string `json:"booking_ref"`
	TenantID   int64  `json:"tenant_id"`
	OwnerID    int64  `json:"owner_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}
