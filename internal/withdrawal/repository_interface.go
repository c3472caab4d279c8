package withdrawal

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, q sqlx.ExtContext, r *Request) (*Request, error)
	GetByID(ctx context.Context, id int) (*Request, error)
	LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*Request, error)
	// PendingTotal sums the user's requests still awaiting a decision.
	PendingTotal(ctx context.Context, q sqlx.QueryerContext, userID int) (decimal.Decimal, error)
	Decide(ctx context.Context, q sqlx.ExtContext, id int, status Status, decidedBy int) error
	ListByUser(ctx context.Context, userID int) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
}
