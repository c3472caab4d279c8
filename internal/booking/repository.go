package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, room_id, hotel_id, guest_id, check_in, check_out, total_price, status, receipt_ref, created_at, updated_at`

var (
	ErrBookingNotFound  = apperr.NotFound("booking not found")
	ErrRoomUnavailable  = apperr.Conflict(apperr.CodeRoomUnavailable, "room is not available for the requested dates")
	ErrHotelNotApproved = apperr.Conflict(apperr.CodeHotelNotApproved, "hotel is not approved for bookings")
	ErrInvalidDateRange = apperr.Validation(apperr.CodeInvalidDateRange, "check-out must be after check-in and check-in cannot be in the past")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// HasOverlap checks [checkIn, checkOut) against every booking that still
// holds its dates. Callers hold the room lock.
func (r *repository) HasOverlap(ctx context.Context, q sqlx.QueryerContext, roomID int, checkIn, checkOut time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status IN ('PENDING', 'PAID')
			  AND check_in < $3
			  AND check_out > $2
		)
	`
	exists, err := db.Exists(ctx, q, query, roomID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (room_id, hotel_id, guest_id, check_in, check_out, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + bookingColumns

	var out Booking
	err := sqlx.GetContext(ctx, q, &out, query,
		b.RoomID, b.HotelID, b.GuestID, b.CheckIn, b.CheckOut, b.TotalPrice.Round(2), string(StatusPending),
	)
	if err != nil {
		if db.IsExclusionViolation(err) || db.IsUniqueViolation(err) {
			return nil, ErrRoomUnavailable
		}
		if db.IsCheckViolation(err) {
			return nil, ErrInvalidDateRange
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	return r.getOne(ctx, r.db, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *repository) LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*Booking, error) {
	return r.getOne(ctx, q, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, id int) (*Booking, error) {
	var b Booking
	if err := sqlx.GetContext(ctx, q, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *repository) MarkPaid(ctx context.Context, q sqlx.ExtContext, id int, receiptRef string) error {
	query := `
		UPDATE bookings
		SET status = 'PAID', receipt_ref = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'PENDING'
	`
	return r.expectOne(q.ExecContext(ctx, query, receiptRef, id))
}

// UpdateStatus moves a booking from one status to another. A booking no
// longer in from is reported as already processed.
func (r *repository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int, from, to Status) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	return r.expectOne(q.ExecContext(ctx, query, string(to), id, string(from)))
}

func (r *repository) expectOne(result sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.AlreadyProcessed("booking")
	}
	return nil
}

func (r *repository) ListByGuest(ctx context.Context, guestID int) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
	`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, guestID); err != nil {
		return nil, fmt.Errorf("list guest bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListByHotel(ctx context.Context, hotelID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id,
			b.room_id,
			b.hotel_id,
			b.guest_id,
			b.check_in,
			b.check_out,
			b.total_price,
			b.status,
			b.receipt_ref,
			b.created_at,
			b.updated_at,
			h.name AS hotel_name,
			r.name AS room_name,
			u.name AS guest_name,
			u.email AS guest_email
		FROM bookings b
		JOIN rooms r ON b.room_id = r.id
		JOIN hotels h ON b.hotel_id = h.id
		JOIN users u ON b.guest_id = u.id
		WHERE b.hotel_id = $1
		ORDER BY b.check_in DESC, b.created_at DESC
	`

	bookings := []BookingWithDetails{}
	if err := r.db.SelectContext(ctx, &bookings, query, hotelID); err != nil {
		return nil, fmt.Errorf("list hotel bookings: %w", err)
	}
	return bookings, nil
}

// ExpirePending fails PENDING bookings created before the cutoff and returns
// their ids. Rows locked by an in-flight payment are re-checked after it
// commits, so a booking paid meanwhile is left alone.
func (r *repository) ExpirePending(ctx context.Context, q sqlx.ExtContext, createdBefore time.Time) ([]int, error) {
	query := `
		UPDATE bookings
		SET status = 'FAILED', updated_at = NOW()
		WHERE status = 'PENDING' AND created_at < $1
		RETURNING id
	`

	ids := []int{}
	if err := sqlx.SelectContext(ctx, q, &ids, query, createdBefore); err != nil {
		return nil, fmt.Errorf("expire pending bookings: %w", err)
	}
	return ids, nil
}
