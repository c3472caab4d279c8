package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository is the wallet store. Every balance change goes through Credit or
// Debit, which must run inside the caller's transaction.
type Repository interface {
	Create(ctx context.Context, q sqlx.ExtContext, userID int) (*Wallet, error)
	GetByUserID(ctx context.Context, userID int) (*Wallet, error)
	LockByUserID(ctx context.Context, q sqlx.ExtContext, userID int) (*Wallet, error)
	Credit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType TxType, reference string) (*Wallet, error)
	Debit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType TxType, reference string) (*Wallet, error)
	ListTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
}
