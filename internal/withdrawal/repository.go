package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelbook/internal/apperr"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const requestColumns = `id, wallet_id, user_id, amount, bank_name, account_number, account_holder, status, decided_by, created_at, updated_at`

var ErrRequestNotFound = apperr.NotFound("withdrawal request not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, req *Request) (*Request, error) {
	query := `
		INSERT INTO withdrawal_requests (wallet_id, user_id, amount, bank_name, account_number, account_holder, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + requestColumns

	var out Request
	err := sqlx.GetContext(ctx, q, &out, query,
		req.WalletID, req.UserID, req.Amount.Round(2), req.BankName, req.AccountNumber, req.AccountHolder, string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("insert withdrawal request: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Request, error) {
	return getOne(ctx, r.db, `SELECT `+requestColumns+` FROM withdrawal_requests WHERE id = $1`, id)
}

func (r *repository) LockByID(ctx context.Context, q sqlx.ExtContext, id int) (*Request, error) {
	return getOne(ctx, q, `SELECT `+requestColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
}

func getOne(ctx context.Context, q sqlx.QueryerContext, query string, id int) (*Request, error) {
	var req Request
	if err := sqlx.GetContext(ctx, q, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get withdrawal request: %w", err)
	}
	return &req, nil
}

func (r *repository) PendingTotal(ctx context.Context, q sqlx.QueryerContext, userID int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlx.GetContext(ctx, q, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawal_requests WHERE user_id = $1 AND status = 'pending'`,
		userID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum pending withdrawals: %w", err)
	}
	return total, nil
}

// Decide moves a pending request to status. A request already decided is
// reported as AlreadyProcessed.
func (r *repository) Decide(ctx context.Context, q sqlx.ExtContext, id int, status Status, decidedBy int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = $1, decided_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`, string(status), decidedBy, id)
	if err != nil {
		return fmt.Errorf("decide withdrawal request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decide withdrawal request: %w", err)
	}
	if n == 0 {
		return apperr.AlreadyProcessed("withdrawal request")
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Request, error) {
	out := []Request{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+requestColumns+` FROM withdrawal_requests WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	return out, nil
}

// ListByStatus lists requests oldest first. An empty status lists all.
func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Request, error) {
	out := []Request{}
	var err error
	if status == "" {
		err = r.db.SelectContext(ctx, &out,
			`SELECT `+requestColumns+` FROM withdrawal_requests ORDER BY created_at`)
	} else {
		err = r.db.SelectContext(ctx, &out,
			`SELECT `+requestColumns+` FROM withdrawal_requests WHERE status = $1 ORDER BY created_at`,
			string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	return out, nil
}
