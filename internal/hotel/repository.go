package hotel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelbook/internal/apperr"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	hotelColumns = `id, owner_id, name, address, approved, created_at`
	roomColumns  = `id, hotel_id, name, rate, discount, capacity, status, created_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHotel(ctx context.Context, ownerID int, name, address string) (*Hotel, error) {
	query := `
		INSERT INTO hotels (owner_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING ` + hotelColumns

	var h Hotel
	if err := r.db.GetContext(ctx, &h, query, ownerID, name, address); err != nil {
		return nil, fmt.Errorf("create hotel: %w", err)
	}
	return &h, nil
}

func (r *repository) ListHotels(ctx context.Context, onlyApproved bool) ([]Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels`
	if onlyApproved {
		query += ` WHERE approved = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	hotels := []Hotel{}
	if err := r.db.SelectContext(ctx, &hotels, query); err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return hotels, nil
}

func (r *repository) GetHotel(ctx context.Context, id int) (*Hotel, error) {
	var h Hotel
	err := r.db.GetContext(ctx, &h, `SELECT `+hotelColumns+` FROM hotels WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("hotel not found")
		}
		return nil, fmt.Errorf("get hotel: %w", err)
	}
	return &h, nil
}

func (r *repository) ApproveHotel(ctx context.Context, id int) (*Hotel, error) {
	var h Hotel
	err := r.db.GetContext(ctx, &h,
		`UPDATE hotels SET approved = TRUE WHERE id = $1 RETURNING `+hotelColumns, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("hotel not found")
		}
		return nil, fmt.Errorf("approve hotel: %w", err)
	}
	return &h, nil
}

func (r *repository) CreateRoom(ctx context.Context, hotelID int, name string, rate, discount decimal.Decimal, capacity int) (*Room, error) {
	query := `
		INSERT INTO rooms (hotel_id, name, rate, discount, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + roomColumns

	var room Room
	if err := r.db.GetContext(ctx, &room, query, hotelID, name, rate, discount, capacity); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &room, nil
}

func (r *repository) ListRooms(ctx context.Context, hotelID int) ([]Room, error) {
	rooms := []Room{}
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms WHERE hotel_id = $1 ORDER BY id`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

const roomDetailsQuery = `
		SELECT r.id, r.hotel_id, r.name, r.rate, r.discount, r.capacity, r.status, r.created_at,
		       h.owner_id, h.name AS hotel_name, h.approved AS hotel_approved
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.id = $1`

func (r *repository) GetRoomDetails(ctx context.Context, q sqlx.QueryerContext, roomID int) (*RoomDetails, error) {
	if q == nil {
		q = r.db
	}
	return getRoomDetails(ctx, q, roomDetailsQuery, roomID)
}

func (r *repository) LockRoom(ctx context.Context, q sqlx.ExtContext, roomID int) (*RoomDetails, error) {
	return getRoomDetails(ctx, q, roomDetailsQuery+"\n\t\tFOR UPDATE OF r", roomID)
}

func getRoomDetails(ctx context.Context, q sqlx.QueryerContext, query string, roomID int) (*RoomDetails, error) {
	var d RoomDetails
	if err := sqlx.GetContext(ctx, q, &d, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("room not found")
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &d, nil
}
