package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the availability ledger. Methods taking a q run inside the
// caller's transaction.
type Repository interface {
	HasOverlap(ctx context.Context, q sqlx.QueryerContext, roomID int, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, q sqlx.ExtContext, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*Booking, error)
	MarkPaid(ctx context.Context, q sqlx.ExtContext, id int, receiptRef string) error
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int, from, to Status) error
	ListByGuest(ctx context.Context, guestID int) ([]Booking, error)
	ListByHotel(ctx context.Context, hotelID int) ([]BookingWithDetails, error)
	ExpirePending(ctx context.Context, q sqlx.ExtContext, createdBefore time.Time) ([]int, error)
}
