package user

import (
	"context"
	"errors"
	"strings"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"
	"hotelbook/internal/db"
	"hotelbook/internal/wallet"

	"github.com/jmoiron/sqlx"
)

var ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, apperr.CodeUnauthenticated, "invalid email or password")

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*User, string, string, error)
	Me(ctx context.Context) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *User, error)
}

type service struct {
	repo       Repository
	wallets    wallet.Repository
	transactor db.Transactor
	jwtSecret  string
}

func NewService(repo Repository, wallets wallet.Repository, transactor db.Transactor, jwtSecret string) Service {
	return &service{
		repo:       repo,
		wallets:    wallets,
		transactor: transactor,
		jwtSecret:  jwtSecret,
	}
}

// Register creates the user and its wallet in one transaction.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	role := auth.RoleGuest
	if req.Role == string(auth.RoleOwner) {
		role = auth.RoleOwner
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	var user *User
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		u, err := s.repo.Create(ctx, tx, strings.TrimSpace(req.Name), email, passwordHash, role)
		if err != nil {
			return err
		}
		if _, err := s.wallets.Create(ctx, tx, u.ID); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.Principal(), user.Email, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.Principal(), user.Email, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Me(ctx context.Context) (*User, error) {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, apperr.Unauthenticated()
	}
	return s.repo.FindByID(ctx, p.UserID)
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RefreshToken issues a new access token carrying the user's current role.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindUnauthenticated, apperr.CodeUnauthenticated, "invalid or expired refresh token", err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	newAccessToken, err := auth.GenerateAccessToken(user.Principal(), user.Email, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return newAccessToken, user, nil
}
