package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db"

	"github.com/jmoiron/sqlx"
)

const txColumns = `id, wallet_id, amount, direction, status, external_ref, order_info, response_code, created_at, updated_at`

var ErrTransactionNotFound = apperr.NotFound("gateway transaction not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error) {
	query := `
		INSERT INTO gateway_transactions (wallet_id, amount, direction, status, external_ref, order_info, response_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + txColumns

	var out Transaction
	err := sqlx.GetContext(ctx, q, &out, query,
		t.WalletID, t.Amount.Round(2), string(t.Direction), string(t.Status), t.ExternalRef, t.OrderInfo, t.ResponseCode,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict(apperr.CodeDuplicate, "gateway reference already recorded")
		}
		return nil, fmt.Errorf("insert gateway transaction: %w", err)
	}
	return &out, nil
}

func (r *repository) GetByRef(ctx context.Context, ref string) (*Transaction, error) {
	return getOne(ctx, r.db, `SELECT `+txColumns+` FROM gateway_transactions WHERE external_ref = $1`, ref)
}

func (r *repository) LockByRef(ctx context.Context, q sqlx.ExtContext, ref string) (*Transaction, error) {
	return getOne(ctx, q, `SELECT `+txColumns+` FROM gateway_transactions WHERE external_ref = $1 FOR UPDATE`, ref)
}

func getOne(ctx context.Context, q sqlx.QueryerContext, query, ref string) (*Transaction, error) {
	var t Transaction
	if err := sqlx.GetContext(ctx, q, &t, query, ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get gateway transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) Finish(ctx context.Context, q sqlx.ExtContext, id int, status Status, responseCode string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE gateway_transactions
		SET status = $1, response_code = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`, string(status), responseCode, id)
	if err != nil {
		return fmt.Errorf("finish gateway transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish gateway transaction: %w", err)
	}
	if n == 0 {
		return apperr.AlreadyProcessed("gateway transaction")
	}
	return nil
}
