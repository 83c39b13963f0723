package models

import "time"

// Principal is the authenticated caller extracted from the access token.
// The identity service mints the token; this service only trusts its claims.
type Principal struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

// User roles
const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

// PG represents a paying-guest listing. Listing CRUD lives in another
// service; this service reads listings and adjusts room availability.
type PG struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomType is one inventory row per room category within a listing.
// Invariant: 0 <= available <= total.
type RoomType struct {
	ID        int64     `db:"id" json:"id"`
	PGID      int64     `db:"pg_id" json:"pg_id"`
	Type      string    `db:"type" json:"type"`
	Price     float64   `db:"price" json:"price"`
	Deposit   float64   `db:"deposit" json:"deposit"`
	Total     int       `db:"total" json:"total"`
	Available int       `db:"available" json:"available"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Room type categories
const (
	RoomTypeSingle  = "single"
	RoomTypeDouble  = "double"
	RoomTypeTriple  = "triple"
	RoomTypeSharing = "sharing"
)

// ValidRoomType reports whether t is a known room category.
func ValidRoomType(t string) bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeSharing:
		return true
	}
	return false
}

// Booking represents one tenancy reservation. The pricing fields are a
// snapshot captured at verification time; they are never recomputed from
// the listing afterwards.
type Booking struct {
	ID         int64  `db:"id" json:"id"`
	BookingRef string `db:"booking_ref" json:"booking_ref"`
	TenantID   int64  `db:"tenant_id" json:"tenant_id"`
	OwnerID    int64  `db:"owner_id" json:"owner_id"`
	PGID       int64  `db:"pg_id" json:"pg_id"`

	RoomType       string    `db:"room_type" json:"room_type"`
	CheckIn        time.Time `db:"check_in" json:"check_in"`
	CheckOut       time.Time `db:"check_out" json:"check_out"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	DurationDays   int       `db:"duration_days" json:"duration_days"`

	MonthlyRent    float64 `db:"monthly_rent" json:"monthly_rent"`
	Deposit        float64 `db:"deposit" json:"deposit"`
	Discount       int     `db:"discount" json:"discount"`
	DiscountAmount float64 `db:"discount_amount" json:"discount_amount"`
	TotalAmount    float64 `db:"total_amount" json:"total_amount"`

	PaymentOrderID   string     `db:"payment_order_id" json:"payment_order_id"`
	PaymentID        string     `db:"payment_id" json:"payment_id"`
	PaymentSignature string     `db:"payment_signature" json:"-"`
	PaymentMethod    string     `db:"payment_method" json:"payment_method"`
	PaymentStatus    string     `db:"payment_status" json:"payment_status"`
	PaidAt           *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	Status string `db:"status" json:"status"`

	ContactName  string `db:"contact_name" json:"contact_name"`
	ContactPhone string `db:"contact_phone" json:"contact_phone"`
	ContactEmail string `db:"contact_email" json:"contact_email"`
	IDProofURL   string `db:"id_proof_url" json:"id_proof_url,omitempty"`

	CancelledBy  *int64     `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelReason *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	RefundAmount *float64   `db:"refund_amount" json:"refund_amount,omitempty"`
	RefundStatus *string    `db:"refund_status" json:"refund_status,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Booking statuses. A booking never regresses except to cancelled;
// completed and cancelled are terminal.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// StatusRank orders the forward path of the state machine. Cancelled is
// not on the forward path and is only reachable through cancellation.
var StatusRank = map[string]int{
	BookingStatusPending:   0,
	BookingStatusConfirmed: 1,
	BookingStatusActive:    2,
	BookingStatusCompleted: 3,
}

// IsTerminalStatus reports whether no further transition is allowed.
func IsTerminalStatus(s string) bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodCash     = "cash"
	PaymentMethodBank     = "bank-transfer"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Refund statuses
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusCompleted = "completed"
)

// StatusStat is one row of the per-status aggregate.
type StatusStat struct {
	Status  string  `db:"status" json:"status"`
	Count   int64   `db:"count" json:"count"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

// MonthlyRevenue is one month of the trailing revenue trend.
type MonthlyRevenue struct {
	Month   time.Time `db:"month" json:"month"`
	Revenue float64   `db:"revenue" json:"revenue"`
	Count   int64     `db:"count" json:"count"`
}

// ProcessedEvent records a consumed event for idempotent handling.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
