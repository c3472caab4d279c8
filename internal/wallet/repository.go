package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, q sqlx.ExtContext, userID int) (*Wallet, error) {
	var w Wallet
	err := sqlx.GetContext(ctx, q, &w,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING `+walletColumns,
		userID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict(apperr.CodeDuplicate, "wallet already exists")
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.WalletNotFound()
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}

// LockByUserID reads the wallet with a row lock held until q commits.
func (r *repository) LockByUserID(ctx context.Context, q sqlx.ExtContext, userID int) (*Wallet, error) {
	var w Wallet
	err := sqlx.GetContext(ctx, q, &w,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.WalletNotFound()
		}
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) Credit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType TxType, reference string) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "credit amount must be positive")
	}
	return r.apply(ctx, q, userID, amount.Round(2), txType, reference)
}

func (r *repository) Debit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType TxType, reference string) (*Wallet, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "debit amount must be positive")
	}
	return r.apply(ctx, q, userID, amount.Round(2).Neg(), txType, reference)
}

func (r *repository) apply(ctx context.Context, q sqlx.ExtContext, userID int, delta decimal.Decimal, txType TxType, reference string) (*Wallet, error) {
	w, err := r.LockByUserID(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.Balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, apperr.InsufficientFunds()
	}

	_, err = q.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		if db.IsCheckViolation(err) {
			return nil, apperr.InsufficientFunds()
		}
		return nil, fmt.Errorf("update wallet balance: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, type, reference, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, delta, string(txType), reference, newBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("insert wallet transaction: %w", err)
	}

	w.Balance = newBalance
	return w, nil
}

func (r *repository) ListTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT t.id, t.wallet_id, t.amount, t.type, t.reference, t.balance_after, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	return txs, nil
}
