package hotel

import (
	"context"
	"testing"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateHotel(ctx context.Context, ownerID int, name, address string) (*Hotel, error) {
	args := m.Called(ctx, ownerID, name, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Hotel), args.Error(1)
}

func (m *MockRepository) ListHotels(ctx context.Context, onlyApproved bool) ([]Hotel, error) {
	args := m.Called(ctx, onlyApproved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Hotel), args.Error(1)
}

func (m *MockRepository) GetHotel(ctx context.Context, id int) (*Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Hotel), args.Error(1)
}

func (m *MockRepository) ApproveHotel(ctx context.Context, id int) (*Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Hotel), args.Error(1)
}

func (m *MockRepository) CreateRoom(ctx context.Context, hotelID int, name string, rate, discount decimal.Decimal, capacity int) (*Room, error) {
	args := m.Called(ctx, hotelID, name, rate, discount, capacity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Room), args.Error(1)
}

func (m *MockRepository) ListRooms(ctx context.Context, hotelID int) ([]Room, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Room), args.Error(1)
}

func (m *MockRepository) GetRoomDetails(ctx context.Context, q sqlx.QueryerContext, roomID int) (*RoomDetails, error) {
	args := m.Called(ctx, q, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RoomDetails), args.Error(1)
}

func (m *MockRepository) LockRoom(ctx context.Context, q sqlx.ExtContext, roomID int) (*RoomDetails, error) {
	args := m.Called(ctx, q, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RoomDetails), args.Error(1)
}

func as(userID int, role auth.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: userID, Role: role})
}

func TestCreateHotel_UsesCallerAsOwner(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := as(5, auth.RoleOwner)

	repo.On("CreateHotel", ctx, 5, "Sea View", "1 Beach Rd").Return(&Hotel{ID: 1, OwnerID: 5, Name: "Sea View"}, nil)

	h, err := svc.CreateHotel(ctx, CreateHotelRequest{Name: " Sea View ", Address: "1 Beach Rd"})
	require.NoError(t, err)
	assert.Equal(t, 5, h.OwnerID)
	repo.AssertExpectations(t)
}

func TestCreateHotel_GuestForbidden(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	_, err := svc.CreateHotel(as(5, auth.RoleGuest), CreateHotelRequest{Name: "x", Address: "y"})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
	repo.AssertNotCalled(t, "CreateHotel")
}

func TestListHotels_AdminSeesPending(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("ListHotels", mock.Anything, false).Return([]Hotel{{ID: 1}, {ID: 2}}, nil)
	repo.On("ListHotels", mock.Anything, true).Return([]Hotel{{ID: 1}}, nil)

	all, err := svc.ListHotels(as(1, auth.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := svc.ListHotels(as(2, auth.RoleGuest))
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestApproveHotel_AdminOnly(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	_, err := svc.ApproveHotel(as(5, auth.RoleOwner), 1)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	repo.On("ApproveHotel", mock.Anything, 1).Return(&Hotel{ID: 1, Approved: true}, nil)
	h, err := svc.ApproveHotel(as(1, auth.RoleAdmin), 1)
	require.NoError(t, err)
	assert.True(t, h.Approved)
}

func TestService_CreateRoom(t *testing.T) {
	valid := CreateRoomRequest{Name: "Deluxe", Rate: decimal.NewFromInt(100), Discount: decimal.RequireFromString("0.1"), Capacity: 2}

	tests := []struct {
		name    string
		ctx     context.Context
		req     CreateRoomRequest
		owner   int
		code    string
		creates bool
	}{
		{"owner creates", as(5, auth.RoleOwner), valid, 5, "", true},
		{"admin creates for any hotel", as(1, auth.RoleAdmin), valid, 5, "", true},
		{"other owner forbidden", as(6, auth.RoleOwner), valid, 5, apperr.CodeForbidden, false},
		{"zero rate", as(5, auth.RoleOwner), CreateRoomRequest{Name: "a", Rate: decimal.Zero, Capacity: 1}, 5, apperr.CodeInvalidInput, false},
		{"discount above one", as(5, auth.RoleOwner), CreateRoomRequest{Name: "a", Rate: decimal.NewFromInt(1), Discount: decimal.NewFromInt(2), Capacity: 1}, 5, apperr.CodeInvalidInput, false},
		{"negative discount", as(5, auth.RoleOwner), CreateRoomRequest{Name: "a", Rate: decimal.NewFromInt(1), Discount: decimal.NewFromInt(-1), Capacity: 1}, 5, apperr.CodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo)

			repo.On("GetHotel", mock.Anything, 3).Return(&Hotel{ID: 3, OwnerID: tt.owner}, nil)
			if tt.creates {
				repo.On("CreateRoom", mock.Anything, 3, "Deluxe", mock.Anything, mock.Anything, 2).Return(&Room{ID: 9, HotelID: 3}, nil)
			}

			room, err := svc.CreateRoom(tt.ctx, 3, tt.req)
			if tt.code != "" {
				assert.Equal(t, tt.code, apperr.CodeOf(err))
				repo.AssertNotCalled(t, "CreateRoom")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 9, room.ID)
		})
	}
}

func TestListRooms_HotelMissing(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("GetHotel", mock.Anything, 42).Return(nil, apperr.NotFound("hotel not found"))

	_, err := svc.ListRooms(context.Background(), 42)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
