package hotel

import (
	"context"
	"strings"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"

	"github.com/shopspring/decimal"
)

type Service interface {
	CreateHotel(ctx context.Context, req CreateHotelRequest) (*Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
	ApproveHotel(ctx context.Context, id int) (*Hotel, error)
	CreateRoom(ctx context.Context, hotelID int, req CreateRoomRequest) (*Room, error)
	ListRooms(ctx context.Context, hotelID int) ([]Room, error)
	// EnsureCanManage checks that the caller owns hotelID or is an admin.
	EnsureCanManage(ctx context.Context, hotelID int) (*Hotel, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateHotel(ctx context.Context, req CreateHotelRequest) (*Hotel, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpManageHotels); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "hotel name is required")
	}
	return s.repo.CreateHotel(ctx, p.UserID, name, strings.TrimSpace(req.Address))
}

// ListHotels returns approved hotels; admins also see pending ones.
func (s *service) ListHotels(ctx context.Context) ([]Hotel, error) {
	p, _ := auth.PrincipalFrom(ctx)
	return s.repo.ListHotels(ctx, !p.IsAdmin())
}

func (s *service) ApproveHotel(ctx context.Context, id int) (*Hotel, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpApproveHotel); err != nil {
		return nil, err
	}
	return s.repo.ApproveHotel(ctx, id)
}

func (s *service) CreateRoom(ctx context.Context, hotelID int, req CreateRoomRequest) (*Room, error) {
	if _, err := s.EnsureCanManage(ctx, hotelID); err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	switch {
	case strings.TrimSpace(req.Name) == "":
		return nil, apperr.Validation(apperr.CodeInvalidInput, "room name is required")
	case !req.Rate.IsPositive():
		return nil, apperr.Validation(apperr.CodeInvalidInput, "rate must be positive")
	case req.Discount.IsNegative() || req.Discount.GreaterThan(one):
		return nil, apperr.Validation(apperr.CodeInvalidInput, "discount must be between 0 and 1")
	case req.Capacity <= 0:
		return nil, apperr.Validation(apperr.CodeInvalidInput, "capacity must be positive")
	}

	return s.repo.CreateRoom(ctx, hotelID, strings.TrimSpace(req.Name), req.Rate.Round(2), req.Discount, req.Capacity)
}

func (s *service) ListRooms(ctx context.Context, hotelID int) ([]Room, error) {
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.repo.ListRooms(ctx, hotelID)
}

func (s *service) EnsureCanManage(ctx context.Context, hotelID int) (*Hotel, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpManageHotels); err != nil {
		return nil, err
	}
	h, err := s.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && h.OwnerID != p.UserID {
		return nil, apperr.Forbidden("not the owner of this hotel")
	}
	return h, nil
}
