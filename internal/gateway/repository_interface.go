package gateway

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, q sqlx.ExtContext, t *Transaction) (*Transaction, error)
	GetByRef(ctx context.Context, ref string) (*Transaction, error)
	LockByRef(ctx context.Context, q sqlx.ExtContext, ref string) (*Transaction, error)
	// Finish moves a pending transaction to a terminal status. Terminal rows
	// are never rewritten.
	Finish(ctx context.Context, q sqlx.ExtContext, id int, status Status, responseCode string) error
}
