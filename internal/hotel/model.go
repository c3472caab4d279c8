package hotel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Hotel struct {
	ID        int       `db:"id" json:"id"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomMaintenance RoomStatus = "maintenance"
	RoomClosed      RoomStatus = "closed"
)

type Room struct {
	ID        int             `db:"id" json:"id"`
	HotelID   int             `db:"hotel_id" json:"hotel_id"`
	Name      string          `db:"name" json:"name"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	Discount  decimal.Decimal `db:"discount" json:"discount"`
	Capacity  int             `db:"capacity" json:"capacity"`
	Status    RoomStatus      `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NightlyPrice is the rate after the room discount.
func (r Room) NightlyPrice() decimal.Decimal {
	return r.Rate.Mul(decimal.NewFromInt(1).Sub(r.Discount))
}

// RoomDetails is a room joined with the hotel facts booking needs.
type RoomDetails struct {
	Room
	OwnerID       int    `db:"owner_id" json:"owner_id"`
	HotelName     string `db:"hotel_name" json:"hotel_name"`
	HotelApproved bool   `db:"hotel_approved" json:"hotel_approved"`
}

type CreateHotelRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type CreateRoomRequest struct {
	Name     string          `json:"name" binding:"required"`
	Rate     decimal.Decimal `json:"rate"`
	Discount decimal.Decimal `json:"discount"`
	Capacity int             `json:"capacity" binding:"required,min=1"`
}
