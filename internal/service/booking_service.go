package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"rentalmate/internal/models"
	"rentalmate/internal/redisclient"
	"rentalmate/internal/store"
	"rentalmate/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Business-rule rejections. The HTTP layer maps these onto status codes.
var (
	ErrForbidden         = errors.New("not authorized for this booking")
	ErrCannotCancel      = errors.New("booking cannot be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRoomSoldOut       = errors.New("no rooms available for the requested type")
	ErrRoomTypeNotFound  = errors.New("room type not offered by this listing")
	ErrVerifyInFlight    = errors.New("payment verification already in progress")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Store is the persistence surface the booking service needs.
type Store interface {
	GetPG(ctx context.Context, id int64) (*models.PG, error)
	GetRoomType(ctx context.Context, pgID int64, roomType string) (*models.RoomType, error)
	CreateBookingTx(ctx context.Context, b *models.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	ListBookings(ctx context.Context, f store.BookingFilter) ([]models.Booking, int64, error)
	UpdateBookingStatus(ctx context.Context, id int64, from, to string) error
	CancelBookingTx(ctx context.Context, b *models.Booking) error
	StatusStats(ctx context.Context, ownerID int64) ([]models.StatusStat, error)
	MonthlyRevenue(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthlyRevenue, error)
}

// Cache is the advisory fast path over Redis. The store keeps the
// authoritative counters; a nil cache disables the fast path. ReserveRoom
// reports redisclient.ErrRoomsNotTracked for unseeded counters, which the
// service seeds from the store via InitRoomAvailability.
type Cache interface {
	ReserveRoom(ctx context.Context, pgID int64, roomType string) (bool, error)
	ReleaseRoom(ctx context.Context, pgID int64, roomType string) error
	InitRoomAvailability(ctx context.Context, pgID int64, roomType string, available, total int) error
	SetVerifyLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseVerifyLock(ctx context.Context, orderID string) error
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event *models.BookingConfirmedEvent) error
	PublishBookingCancelled(ctx context.Context, event *models.BookingCancelledEvent) error
	PublishBookingStatusChanged(ctx context.Context, event *models.BookingStatusChangedEvent) error
}

// BookingService drives the booking lifecycle: order creation, payment
// verification, cancellation, status updates and queries.
type BookingService struct {
	store         Store
	cache         Cache
	gateway       Gateway
	publisher     Publisher
	logger        *zap.Logger
	verifyLockTTL time.Duration
	maxPageSize   int
	now           func() time.Time
}

type BookingServiceOption func(*BookingService)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

// WithVerifyLockTTL sets the verify-payment lock lifetime.
func WithVerifyLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.verifyLockTTL = ttl
	}
}

// WithMaxPageSize caps the list page size.
func WithMaxPageSize(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.maxPageSize = n
	}
}

// NewBookingService creates a new booking service
func NewBookingService(st Store, cache Cache, gateway Gateway, publisher Publisher, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		store:         st,
		cache:         cache,
		gateway:       gateway,
		publisher:     publisher,
		logger:        util.GetLogger(),
		verifyLockTTL: 30 * time.Second,
		maxPageSize:   100,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrderRequest carries the stay terms for a payment order.
type CreateOrderRequest struct {
	PGID        int64     `json:"pg" binding:"required"`
	RoomType    string    `json:"room_type" binding:"required"`
	CheckIn     time.Time `json:"check_in" binding:"required"`
	CheckOut    time.Time `json:"check_out" binding:"required"`
	MonthlyRent float64   `json:"monthly_rent" binding:"required"`
	Deposit     float64   `json:"deposit"`
}

// OrderResponse is the pricing result plus the gateway order handle.
type OrderResponse struct {
	OrderID        string  `json:"order_id"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	Months         int     `json:"months"`
	Discount       int     `json:"discount"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
}

func validateStayTerms(roomType string, checkIn, checkOut time.Time, monthlyRent, deposit float64) error {
	var fields []string
	if !models.ValidRoomType(roomType) {
		fields = append(fields, "room_type must be one of single, double, triple, sharing")
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		fields = append(fields, "check_in and check_out are required")
	} else if !checkOut.After(checkIn) {
		fields = append(fields, "check_out must be after check_in")
	}
	if monthlyRent <= 0 {
		fields = append(fields, "monthly_rent must be positive")
	}
	if deposit < 0 {
		fields = append(fields, "deposit cannot be negative")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreateOrder prices the stay and obtains an order handle from the
// gateway. Nothing is persisted: a booking only exists once the payment
// for the order is verified.
func (s *BookingService) CreateOrder(ctx context.Context, p models.Principal, req *CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CreateOrder")
	defer span.End()

	if err := validateStayTerms(req.RoomType, req.CheckIn, req.CheckOut, req.MonthlyRent, req.Deposit); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPG(ctx, req.PGID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRoomType(ctx, req.PGID, req.RoomType); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomTypeNotFound
		}
		return nil, err
	}

	quote := CalculatePricing(req.CheckIn, req.CheckOut, req.MonthlyRent, req.Deposit)
	amountPaise := int64(math.Round(quote.Total * 100))

	receipt := fmt.Sprintf("receipt_%d", s.now().UnixMilli())
	orderID, err := s.gateway.CreateOrder(ctx, receipt, amountPaise)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Payment order created",
		zap.String("order_id", orderID),
		zap.Int64("pg_id", req.PGID),
		zap.Int64("tenant_id", p.ID),
		zap.Float64("total", quote.Total))

	return &OrderResponse{
		OrderID:        orderID,
		Amount:         amountPaise,
		Currency:       "INR",
		Months:         quote.Months,
		Discount:       quote.Discount,
		DiscountAmount: quote.DiscountAmount,
		Total:          quote.Total,
	}, nil
}

// ContactDetails is the tenant-supplied contact snapshot.
type ContactDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// VerifyPaymentRequest carries the gateway proof plus the booking fields.
type VerifyPaymentRequest struct {
	OrderID     string         `json:"order_id" binding:"required"`
	PaymentID   string         `json:"payment_id"`
	Signature   string         `json:"signature"`
	PGID        int64          `json:"pg" binding:"required"`
	RoomType    string         `json:"room_type" binding:"required"`
	CheckIn     time.Time      `json:"check_in" binding:"required"`
	CheckOut    time.Time      `json:"check_out" binding:"required"`
	MonthlyRent float64        `json:"monthly_rent" binding:"required"`
	Deposit     float64        `json:"deposit"`
	Contact     ContactDetails `json:"contact"`
	IDProofURL  string         `json:"id_proof_url"`
}

// VerifyPayment checks the payment proof and, on success, creates the
// booking and takes one room out of inventory in a single transaction.
// Verifying the same order twice returns the already-created booking.
func (s *BookingService) VerifyPayment(ctx context.Context, p models.Principal, req *VerifyPaymentRequest) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.VerifyPayment")
	defer span.End()

	if err := validateStayTerms(req.RoomType, req.CheckIn, req.CheckOut, req.MonthlyRent, req.Deposit); err != nil {
		return nil, err
	}

	if existing, err := s.store.GetBookingByOrderID(ctx, req.OrderID); err != nil {
		return nil, err
	} else if existing != nil {
		// A replayed order only returns the booking to principals who
		// could read it anyway; anyone else learns nothing.
		if !canAccess(p, existing) {
			return nil, ErrForbidden
		}
		s.logger.Info("Duplicate payment verification",
			zap.String("order_id", req.OrderID),
			zap.String("booking_ref", existing.BookingRef))
		return existing, nil
	}

	if err := s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		util.PaymentVerificationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// The simulated gateway accepts submissions without payment fields.
	if req.PaymentID == "" {
		req.PaymentID = fmt.Sprintf("pay_dev_%d", s.now().UnixNano())
	}
	if req.Signature == "" {
		req.Signature = "dev_signature"
	}

	pg, err := s.store.GetPG(ctx, req.PGID)
	if err != nil {
		return nil, err
	}
	rt, err := s.store.GetRoomType(ctx, req.PGID, req.RoomType)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomTypeNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		ok, err := s.cache.SetVerifyLock(ctx, req.OrderID, s.verifyLockTTL)
		if err != nil {
			s.logger.Warn("Verify lock unavailable, proceeding on database guard", zap.Error(err))
		} else if !ok {
			if existing, err := s.store.GetBookingByOrderID(ctx, req.OrderID); err == nil && existing != nil {
				if !canAccess(p, existing) {
					return nil, ErrForbidden
				}
				return existing, nil
			}
			return nil, ErrVerifyInFlight
		}
	}

	quote := CalculatePricing(req.CheckIn, req.CheckOut, req.MonthlyRent, req.Deposit)
	now := s.now()

	booking := &models.Booking{
		BookingRef:       newBookingRef(now),
		TenantID:         p.ID,
		OwnerID:          pg.OwnerID,
		PGID:             pg.ID,
		RoomType:         req.RoomType,
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
		DurationMonths:   quote.Months,
		DurationDays:     quote.Days,
		MonthlyRent:      req.MonthlyRent,
		Deposit:          req.Deposit,
		Discount:         quote.Discount,
		DiscountAmount:   quote.DiscountAmount,
		TotalAmount:      quote.Total,
		PaymentOrderID:   req.OrderID,
		PaymentID:        req.PaymentID,
		PaymentSignature: req.Signature,
		PaymentMethod:    s.gateway.Method(),
		PaymentStatus:    models.PaymentStatusCompleted,
		PaidAt:           &now,
		Status:           models.BookingStatusConfirmed,
		ContactName:      req.Contact.Name,
		ContactPhone:     req.Contact.Phone,
		ContactEmail:     req.Contact.Email,
		IDProofURL:       req.IDProofURL,
	}

	reserved := false
	if s.cache != nil {
		ok, err := s.reserveRoomCached(ctx, pg.ID, req.RoomType, rt)
		if err != nil {
			s.logger.Warn("Room cache reservation failed, falling back to database",
				zap.Int64("pg_id", pg.ID), zap.Error(err))
		} else if !ok {
			// The counter is advisory. A drifted zero must not reject a
			// booking the conditional decrement below would allow.
			util.RoomReservationsFailedTotal.WithLabelValues("cache_sold_out").Inc()
		} else {
			reserved = true
		}
	}

	if err := s.store.CreateBookingTx(ctx, booking); err != nil {
		if reserved {
			s.releaseRoomCached(ctx, pg.ID, req.RoomType)
		}
		s.releaseVerifyLock(ctx, req.OrderID)

		switch {
		case errors.Is(err, store.ErrNoRoomsAvailable):
			util.RoomReservationsFailedTotal.WithLabelValues("sold_out").Inc()
			return nil, ErrRoomSoldOut
		case errors.Is(err, store.ErrDuplicateOrder):
			if existing, lookupErr := s.store.GetBookingByOrderID(ctx, req.OrderID); lookupErr == nil && existing != nil {
				if !canAccess(p, existing) {
					return nil, ErrForbidden
				}
				return existing, nil
			}
			return nil, err
		}
		util.PaymentVerificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// The unique payment_order_id now guards replays; the lock has done
	// its job.
	s.releaseVerifyLock(ctx, req.OrderID)

	util.PaymentVerificationsTotal.WithLabelValues("success").Inc()
	util.BookingsCreatedTotal.Inc()
	s.logger.Info("Booking confirmed",
		zap.String("booking_ref", booking.BookingRef),
		zap.Int64("pg_id", pg.ID),
		zap.String("room_type", booking.RoomType),
		zap.Float64("total", booking.TotalAmount))

	s.publishConfirmed(ctx, booking)
	return booking, nil
}

func (s *BookingService) releaseVerifyLock(ctx context.Context, orderID string) {
	if s.cache != nil {
		_ = s.cache.ReleaseVerifyLock(ctx, orderID)
	}
}

// reserveRoomCached decrements the cached counter, seeding it from the
// authoritative store row on first miss.
func (s *BookingService) reserveRoomCached(ctx context.Context, pgID int64, roomType string, rt *models.RoomType) (bool, error) {
	ok, err := s.cache.ReserveRoom(ctx, pgID, roomType)
	if !errors.Is(err, redisclient.ErrRoomsNotTracked) {
		return ok, err
	}
	if err := s.cache.InitRoomAvailability(ctx, pgID, roomType, rt.Available, rt.Total); err != nil {
		return false, err
	}
	return s.cache.ReserveRoom(ctx, pgID, roomType)
}

// releaseRoomCached returns a cached room. An untracked counter has
// nothing to release; other failures are logged, the counter re-seeds on
// the next reservation miss.
func (s *BookingService) releaseRoomCached(ctx context.Context, pgID int64, roomType string) {
	err := s.cache.ReleaseRoom(ctx, pgID, roomType)
	if err != nil && !errors.Is(err, redisclient.ErrRoomsNotTracked) {
		s.logger.Warn("Failed to release cached room",
			zap.Int64("pg_id", pgID),
			zap.String("room_type", roomType),
			zap.Error(err))
	}
}

// GetBooking fetches one booking for its tenant, its owner, or an admin.
func (s *BookingService) GetBooking(ctx context.Context, p models.Principal, id int64) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, booking) {
		return nil, ErrForbidden
	}
	return booking, nil
}

// BookingPage is a role-scoped page of bookings.
type BookingPage struct {
	Bookings    []models.Booking `json:"bookings"`
	Count       int              `json:"count"`
	Total       int64            `json:"total"`
	TotalPages  int64            `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

// ListBookings returns bookings visible to the caller: tenants see their
// own, owners see bookings on their listings, admins see everything.
func (s *BookingService) ListBookings(ctx context.Context, p models.Principal, status string, page, limit int) (*BookingPage, error) {
	if status != "" && !validBookingStatus(status) {
		return nil, &ValidationError{Fields: []string{"unknown status filter"}}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	f := store.BookingFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	switch p.Role {
	case models.RoleTenant:
		f.TenantID = p.ID
	case models.RoleOwner:
		f.OwnerID = p.ID
	}

	bookings, total, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return &BookingPage{
		Bookings:    bookings,
		Count:       len(bookings),
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// CancelResult is the outcome of a cancellation.
type CancelResult struct {
	Booking          *models.Booking `json:"booking"`
	RefundAmount     float64         `json:"refund_amount"`
	RefundPercentage int             `json:"refund_percentage"`
}

// CancelBooking cancels a non-terminal booking, computes the tiered
// refund from days until check-in, and returns the room to inventory.
func (s *BookingService) CancelBooking(ctx context.Context, p models.Principal, id int64, reason string) (*CancelResult, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CancelBooking")
	defer span.End()

	booking, err := s.store.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, booking) {
		return nil, ErrForbidden
	}
	if models.IsTerminalStatus(booking.Status) {
		return nil, fmt.Errorf("%w: booking is %s", ErrCannotCancel, booking.Status)
	}

	now := s.now()
	refundAmount, refundPct := CalculateRefund(booking.CheckIn, booking.TotalAmount, now)
	util.RefundsComputedTotal.Inc()

	refundStatus := models.RefundStatusPending
	booking.Status = models.BookingStatusCancelled
	booking.CancelledBy = &p.ID
	booking.CancelReason = &reason
	booking.CancelledAt = &now
	booking.RefundAmount = &refundAmount
	booking.RefundStatus = &refundStatus

	if err := s.store.CancelBookingTx(ctx, booking); err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: booking state changed", ErrCannotCancel)
		}
		return nil, err
	}

	if s.cache != nil {
		s.releaseRoomCached(ctx, booking.PGID, booking.RoomType)
	}

	util.BookingsCancelledTotal.Inc()
	s.logger.Info("Booking cancelled",
		zap.String("booking_ref", booking.BookingRef),
		zap.Int64("cancelled_by", p.ID),
		zap.Float64("refund_amount", refundAmount),
		zap.Int("refund_percentage", refundPct))

	s.publishCancelled(ctx, booking, p.ID, reason, refundAmount)

	return &CancelResult{
		Booking:          booking,
		RefundAmount:     refundAmount,
		RefundPercentage: refundPct,
	}, nil
}

// UpdateStatus moves a booking forward along the state machine. Only the
// booking's owner or an admin may do this; cancellation has its own path.
func (s *BookingService) UpdateStatus(ctx context.Context, p models.Principal, id int64, status string) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.UpdateStatus")
	defer span.End()

	if status == models.BookingStatusCancelled {
		return nil, &ValidationError{Fields: []string{"use the cancel operation to cancel a booking"}}
	}
	if _, ok := models.StatusRank[status]; !ok {
		return nil, &ValidationError{Fields: []string{"unknown status"}}
	}

	booking, err := s.store.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != p.ID && p.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if models.IsTerminalStatus(booking.Status) {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}
	if models.StatusRank[status] <= models.StatusRank[booking.Status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	oldStatus := booking.Status
	if err := s.store.UpdateBookingStatus(ctx, id, oldStatus, status); err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: booking state changed", ErrInvalidTransition)
		}
		return nil, err
	}
	booking.Status = status

	util.BookingStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Booking status updated",
		zap.String("booking_ref", booking.BookingRef),
		zap.String("from", oldStatus),
		zap.String("to", status))

	s.publishStatusChanged(ctx, booking, oldStatus)
	return booking, nil
}

// StatsOverview aggregates bookings for the owner/admin dashboard.
type StatsOverview struct {
	StatusStats    []models.StatusStat     `json:"status_stats"`
	MonthlyRevenue []models.MonthlyRevenue `json:"monthly_revenue"`
}

// Stats returns per-status counts and revenue plus the trailing
// 12-month revenue trend for completed payments. Owners see their own
// listings; admins see everything.
func (s *BookingService) Stats(ctx context.Context, p models.Principal) (*StatsOverview, error) {
	if p.Role != models.RoleOwner && p.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	var ownerID int64
	if p.Role == models.RoleOwner {
		ownerID = p.ID
	}

	stats, err := s.store.StatusStats(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(-1, 0, 0)
	trend, err := s.store.MonthlyRevenue(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	return &StatsOverview{StatusStats: stats, MonthlyRevenue: trend}, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, b *models.Booking) {
	if s.publisher == nil {
		return
	}
	event := &models.BookingConfirmedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookingConfirmed, s.now()),
		BookingID:  b.ID,
		BookingRef: b.BookingRef,
		TenantID:   b.TenantID,
		OwnerID:    b.OwnerID,
		PGID:       b.PGID,
		RoomType:   b.RoomType,
		Total:      b.TotalAmount,
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookingConfirmed event", zap.Error(err))
	}
}

func (s *BookingService) publishCancelled(ctx context.Context, b *models.Booking, cancelledBy int64, reason string, refund float64) {
	if s.publisher == nil {
		return
	}
	event := &models.BookingCancelledEvent{
		BaseEvent:    newBaseEvent(models.EventTypeBookingCancelled, s.now()),
		BookingID:    b.ID,
		BookingRef:   b.BookingRef,
		TenantID:     b.TenantID,
		OwnerID:      b.OwnerID,
		PGID:         b.PGID,
		RoomType:     b.RoomType,
		CancelledBy:  cancelledBy,
		Reason:       reason,
		RefundAmount: refund,
	}
	if err := s.publisher.PublishBookingCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookingCancelled event", zap.Error(err))
	}
}

func (s *BookingService) publishStatusChanged(ctx context.Context, b *models.Booking, oldStatus string) {
	if s.publisher == nil {
		return
	}
	event := &models.BookingStatusChangedEvent{
		BaseEvent:  newBaseEvent(models.EventTypeBookingStatusChanged, s.now()),
		BookingID:  b.ID,
		BookingRef: b.BookingRef,
		TenantID:   b.TenantID,
		OwnerID:    b.OwnerID,
		OldStatus:  oldStatus,
		NewStatus:  b.Status,
	}
	if err := s.publisher.PublishBookingStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish BookingStatusChanged event", zap.Error(err))
	}
}

func newBaseEvent(eventType string, ts time.Time) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: ts,
	}
}

func canAccess(p models.Principal, b *models.Booking) bool {
	return b.TenantID == p.ID || b.OwnerID == p.ID || p.Role == models.RoleAdmin
}

func validBookingStatus(status string) bool {
	if status == models.BookingStatusCancelled {
		return true
	}
	_, ok := models.StatusRank[status]
	return ok
}

// newBookingRef builds the human-readable reference shown to tenants,
// e.g. BK84722913047.
func newBookingRef(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return fmt.Sprintf("BK%s%03d", ts, rand.Intn(1000))
}
