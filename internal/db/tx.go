package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Transactor runs fn as one unit of work. fn receives the transaction as a
// sqlx.ExtContext so repositories accept either a *sqlx.DB or a *sqlx.Tx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx sqlx.ExtContext) error) error
}

type TxManager struct {
	db   *sqlx.DB
	opts *sql.TxOptions
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
// A panic is re-raised after rollback.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx sqlx.ExtContext) error) (err error) {
	tx, err := m.db.BeginTxx(ctx, m.opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
