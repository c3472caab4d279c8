package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const ledgerColumns = `id, booking_id, owner_id, gross, admin_share, owner_share, commission_percent, status, decided_by, created_at, updated_at`

var ErrSplitNotFound = apperr.NotFound("settlement not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, lt *LedgerTransaction) (*LedgerTransaction, error) {
	query := `
		INSERT INTO ledger_transactions (booking_id, owner_id, gross, admin_share, owner_share, commission_percent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + ledgerColumns

	var out LedgerTransaction
	err := sqlx.GetContext(ctx, q, &out, query,
		lt.BookingID, lt.OwnerID, lt.Gross, lt.AdminShare, lt.OwnerShare, lt.CommissionPercent, string(StatusPending),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.AlreadyProcessed("settlement for booking")
		}
		return nil, fmt.Errorf("insert ledger transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*LedgerTransaction, error) {
	return r.getOne(ctx, r.db, `SELECT `+ledgerColumns+` FROM ledger_transactions WHERE id = $1`, id)
}

func (r *repository) LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*LedgerTransaction, error) {
	return r.getOne(ctx, q, `SELECT `+ledgerColumns+` FROM ledger_transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) LockByBookingID(ctx context.Context, q sqlx.ExtContext, bookingID int) (*LedgerTransaction, error) {
	return r.getOne(ctx, q, `SELECT `+ledgerColumns+` FROM ledger_transactions WHERE booking_id = $1 FOR UPDATE`, bookingID)
}

func (r *repository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, arg int) (*LedgerTransaction, error) {
	var lt LedgerTransaction
	if err := sqlx.GetContext(ctx, q, &lt, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSplitNotFound
		}
		return nil, fmt.Errorf("get ledger transaction: %w", err)
	}
	return &lt, nil
}

func (r *repository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, id int, status Status, decidedBy int) error {
	res, err := q.ExecContext(ctx,
		`UPDATE ledger_transactions SET status = $1, decided_by = $2, updated_at = NOW() WHERE id = $3`,
		string(status), decidedBy, id,
	)
	if err != nil {
		return fmt.Errorf("update ledger transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ledger transaction: %w", err)
	}
	if n == 0 {
		return ErrSplitNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, status Status) ([]LedgerTransaction, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_transactions`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	out := []LedgerTransaction{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list ledger transactions: %w", err)
	}
	return out, nil
}

func (r *repository) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueByDay, error) {
	query := `
SELECT
  DATE(created_at)::text AS bucket,
  COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved,
  COUNT(*) FILTER (WHERE status = 'PENDING')  AS pending,
  COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected,
  COALESCE(SUM(gross) FILTER (WHERE status = 'APPROVED'), 0)       AS gross,
  COALESCE(SUM(admin_share) FILTER (WHERE status = 'APPROVED'), 0) AS admin_share,
  COALESCE(SUM(owner_share) FILTER (WHERE status = 'APPROVED'), 0) AS owner_share
FROM ledger_transactions
WHERE created_at >= $1 AND created_at < $2
GROUP BY DATE(created_at)
ORDER BY bucket;
`
	stats := []RevenueByDay{}
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	return stats, nil
}

type commissionRepository struct {
	db *sqlx.DB
}

func NewCommissionRepository(db *sqlx.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

// GetPercent reads the singleton commission row through q so the value is
// taken inside the caller's transaction.
func (r *commissionRepository) GetPercent(ctx context.Context, q sqlx.QueryerContext) (decimal.Decimal, error) {
	if q == nil {
		q = r.db
	}

	var p decimal.NullDecimal
	err := sqlx.GetContext(ctx, q, &p, `SELECT commission_percent FROM platform_settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperr.ConfigMissing("commission percent is not configured")
		}
		return decimal.Zero, fmt.Errorf("get commission percent: %w", err)
	}
	if !p.Valid {
		return decimal.Zero, apperr.ConfigMissing("commission percent is not configured")
	}
	return p.Decimal, nil
}

func (r *commissionRepository) SetPercent(ctx context.Context, percent decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO platform_settings (id, commission_percent, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET commission_percent = EXCLUDED.commission_percent, updated_at = NOW()
	`, percent)
	if err != nil {
		if db.IsCheckViolation(err) {
			return ErrInvalidPercent
		}
		return fmt.Errorf("set commission percent: %w", err)
	}
	return nil
}
