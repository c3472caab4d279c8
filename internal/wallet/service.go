package wallet

import (
	"context"

	"hotelbook/internal/auth"
)

type Service interface {
	GetWallet(ctx context.Context) (*Wallet, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]Transaction, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetWallet(ctx context.Context) (*Wallet, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewWallet); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, p.UserID)
}

func (s *service) ListTransactions(ctx context.Context, limit, offset int) ([]Transaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewWallet); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, p.UserID, limit, offset)
}
