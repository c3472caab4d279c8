package hotel

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateHotel(ctx context.Context, ownerID int, name, address string) (*Hotel, error)
	ListHotels(ctx context.Context, onlyApproved bool) ([]Hotel, error)
	GetHotel(ctx context.Context, id int) (*Hotel, error)
	ApproveHotel(ctx context.Context, id int) (*Hotel, error)
	CreateRoom(ctx context.Context, hotelID int, name string, rate, discount decimal.Decimal, capacity int) (*Room, error)
	ListRooms(ctx context.Context, hotelID int) ([]Room, error)
	GetRoomDetails(ctx context.Context, q sqlx.QueryerContext, roomID int) (*RoomDetails, error)
	// LockRoom reads the room with its hotel and holds the room row lock
	// until q commits.
	LockRoom(ctx context.Context, q sqlx.ExtContext, roomID int) (*RoomDetails, error)
}
