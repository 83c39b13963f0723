package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rentalmate/internal/models"

	"github.com/lib/pq"
)

const bookingColumns = `
	booking_ref, tenant_id, owner_id, pg_id, room_type, check_in, check_out,
	duration_months, duration_days, monthly_rent, deposit, discount,
	discount_amount, total_amount, payment_order_id, payment_id,
	payment_signature, payment_method, payment_status, paid_at, status,
	contact_name, contact_phone, contact_email, id_proof_url`

// CreateBookingTx inserts a booking and decrements the matching room-type
// availability in a single transaction. The decrement is conditional on
// available > 0, so concurrent verifications against the last room admit
// exactly one booking.
func (s *Store) CreateBookingTx(ctx context.Context, b *models.Booking) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE room_types
		 SET available = available - 1, updated_at = NOW()
		 WHERE pg_id = $1 AND type = $2 AND available > 0`,
		b.PGID, b.RoomType)
	if err != nil {
		return fmt.Errorf("failed to reserve room: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoRoomsAvailable
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		b.BookingRef, b.TenantID, b.OwnerID, b.PGID, b.RoomType, b.CheckIn, b.CheckOut,
		b.DurationMonths, b.DurationDays, b.MonthlyRent, b.Deposit, b.Discount,
		b.DiscountAmount, b.TotalAmount, b.PaymentOrderID, b.PaymentID,
		b.PaymentSignature, b.PaymentMethod, b.PaymentStatus, b.PaidAt, b.Status,
		b.ContactName, b.ContactPhone, b.ContactEmail, b.IDProofURL,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return tx.Commit()
}

// GetBookingByID retrieves a booking by ID
func (s *Store) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	err := s.db.GetContext(ctx, &b, "SELECT * FROM bookings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBookingByOrderID retrieves a booking by its gateway order ID.
// Returns nil, nil when no booking exists for the order.
func (s *Store) GetBookingByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.GetContext(ctx, &b, "SELECT * FROM bookings WHERE payment_order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BookingFilter scopes a booking list query.
type BookingFilter struct {
	TenantID int64
	OwnerID  int64
	Status   string
	Limit    int
	Offset   int
}

// ListBookings returns a page of bookings matching the filter plus the
// unpaged total count.
func (s *Store) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.TenantID != 0 {
		add("tenant_id = $%d", f.TenantID)
	}
	if f.OwnerID != 0 {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM bookings"+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT * FROM bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	var bookings []models.Booking
	if err := s.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// UpdateBookingStatus moves a booking from one status to another. The
// expected current status guards against concurrent transitions.
func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, from, to string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CancelBookingTx marks a booking cancelled, attaches the cancellation
// record, and returns the room to inventory, all in one transaction. The
// status guard rejects bookings that are already terminal.
func (s *Store) CancelBookingTx(ctx context.Context, b *models.Booking) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings
		 SET status = $1, cancelled_by = $2, cancel_reason = $3, cancelled_at = $4,
		     refund_amount = $5, refund_status = $6, updated_at = NOW()
		 WHERE id = $7 AND status NOT IN ($8, $9)`,
		models.BookingStatusCancelled, b.CancelledBy, b.CancelReason, b.CancelledAt,
		b.RefundAmount, b.RefundStatus,
		b.ID, models.BookingStatusCompleted, models.BookingStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE room_types
		 SET available = available + 1, updated_at = NOW()
		 WHERE pg_id = $1 AND type = $2 AND available < total`,
		b.PGID, b.RoomType)
	if err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}

	return tx.Commit()
}

// StatusStats aggregates booking counts and revenue by status. A zero
// ownerID means all owners (admin scope).
func (s *Store) StatusStats(ctx context.Context, ownerID int64) ([]models.StatusStat, error) {
	query := `SELECT status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue
	          FROM bookings`
	var args []interface{}
	if ownerID != 0 {
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}
	query += " GROUP BY status ORDER BY status"

	var stats []models.StatusStat
	err := s.db.SelectContext(ctx, &stats, query, args...)
	return stats, err
}

// MonthlyRevenue returns the completed-payment revenue trend since the
// given time, grouped by calendar month.
func (s *Store) MonthlyRevenue(ctx context.Context, ownerID int64, since time.Time) ([]models.MonthlyRevenue, error) {
	query := `SELECT date_trunc('month', created_at) AS month,
	                 COALESCE(SUM(total_amount), 0) AS revenue,
	                 COUNT(*) AS count
	          FROM bookings
	          WHERE payment_status = 'completed' AND created_at >= $1`
	args := []interface{}{since}
	if ownerID != 0 {
		query += " AND owner_id = $2"
		args = append(args, ownerID)
	}
	query += " GROUP BY 1 ORDER BY 1"

	var trend []models.MonthlyRevenue
	err := s.db.SelectContext(ctx, &trend, query, args...)
	return trend, err
}
