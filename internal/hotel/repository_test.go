package hotel

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListHotels_ApprovedFilter(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM hotels WHERE approved = TRUE ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "address", "approved", "created_at"}).
			AddRow(1, 5, "Sea View", "1 Beach Rd", true, now))

	hotels, err := repo.ListHotels(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, "Sea View", hotels[0].Name)
}

func TestApproveHotel_NotFound(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE hotels SET approved = TRUE WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ApproveHotel(context.Background(), 7)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateRoom(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rooms (hotel_id, name, rate, discount, capacity)")).
		WithArgs(3, "Deluxe", dbtest.Decimal("100"), dbtest.Decimal("0.1"), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hotel_id", "name", "rate", "discount", "capacity", "status", "created_at"}).
			AddRow(9, 3, "Deluxe", "100.00", "0.1000", 2, "available", now))

	room, err := repo.CreateRoom(context.Background(), 3, "Deluxe", decimal.NewFromInt(100), decimal.RequireFromString("0.1"), 2)
	require.NoError(t, err)
	assert.Equal(t, RoomAvailable, room.Status)
	assert.True(t, room.Rate.Equal(decimal.NewFromInt(100)))
}

func TestLockRoom(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF r")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "hotel_id", "name", "rate", "discount", "capacity", "status", "created_at",
			"owner_id", "hotel_name", "hotel_approved",
		}).AddRow(9, 3, "Deluxe", "100.00", "0", 2, "available", now, 5, "Sea View", true))

	d, err := repo.LockRoom(context.Background(), sqlxDB, 9)
	require.NoError(t, err)
	assert.Equal(t, 5, d.OwnerID)
	assert.Equal(t, "Sea View", d.HotelName)
	assert.True(t, d.HotelApproved)
	assert.Equal(t, 3, d.HotelID)
}

func TestLockRoom_NotFound(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE OF r")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.LockRoom(context.Background(), sqlxDB, 9)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestGetRoomDetails_DoesNotLock(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(`WHERE r\.id = \$1$`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "hotel_id", "name", "rate", "discount", "capacity", "status", "created_at",
			"owner_id", "hotel_name", "hotel_approved",
		}).AddRow(9, 3, "Deluxe", "100.00", "0", 2, "maintenance", now, 5, "Sea View", false))

	d, err := repo.GetRoomDetails(context.Background(), nil, 9)
	require.NoError(t, err)
	assert.Equal(t, RoomMaintenance, d.Status)
	assert.False(t, d.HotelApproved)
}
