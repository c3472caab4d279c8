package settlement

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, q sqlx.ExtContext, lt *LedgerTransaction) (*LedgerTransaction, error)
	GetByID(ctx context.Context, id int) (*LedgerTransaction, error)
	LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*LedgerTransaction, error)
	LockByBookingID(ctx context.Context, q sqlx.ExtContext, bookingID int) (*LedgerTransaction, error)
	UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int, status Status, decidedBy int) error
	List(ctx context.Context, status Status) ([]LedgerTransaction, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueByDay, error)
}

// CommissionRepository reads and writes the platform commission percent.
type CommissionRepository interface {
	GetPercent(ctx context.Context, q sqlx.QueryerContext) (decimal.Decimal, error)
	SetPercent(ctx context.Context, percent decimal.Decimal) error
}
