package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
)

// Holds reports whether a booking in this status occupies its dates.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusPaid
}

type Booking struct {
	ID         int             `db:"id" json:"id"`
	RoomID     int             `db:"room_id" json:"room_id"`
	HotelID    int             `db:"hotel_id" json:"hotel_id"`
	GuestID    int             `db:"guest_id" json:"guest_id"`
	CheckIn    time.Time       `db:"check_in" json:"check_in"`
	CheckOut   time.Time       `db:"check_out" json:"check_out"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Status     Status          `db:"status" json:"status"`
	ReceiptRef string          `db:"receipt_ref" json:"receipt_ref,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

func (b Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// Overlaps reports whether the half-open stays [b.CheckIn, b.CheckOut) and
// [in, out) share a night.
func (b Booking) Overlaps(in, out time.Time) bool {
	return b.CheckIn.Before(out) && in.Before(b.CheckOut)
}

type BookingWithDetails struct {
	Booking
	HotelName  string `db:"hotel_name" json:"hotel_name"`
	RoomName   string `db:"room_name" json:"room_name"`
	GuestName  string `db:"guest_name" json:"guest_name"`
	GuestEmail string `db:"guest_email" json:"guest_email"`
}

type CreateBookingRequest struct {
	RoomID   int    `json:"room_id" binding:"required,min=1"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

type PayBookingResponse struct {
	Booking    *Booking `json:"booking"`
	ReceiptRef string   `json:"receipt_ref"`
	SplitID    int      `json:"settlement_id"`
}

type ExpireResponse struct {
	Expired []int `json:"expired"`
}

// Nights counts calendar nights between two dates. Unix seconds keep long
// stays exact where time.Duration would saturate.
func Nights(in, out time.Time) int {
	return int((dateOf(out).Unix() - dateOf(in).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
