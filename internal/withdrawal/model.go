package withdrawal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusRefuse   Status = "refuse"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusResolved, StatusRefuse:
		return true
	}
	return false
}

// Request is a user's cash-out to an external bank account. Funds leave the
// wallet only when an admin resolves it.
type Request struct {
	ID            int             `db:"id" json:"id"`
	WalletID      int             `db:"wallet_id" json:"wallet_id"`
	UserID        int             `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	BankName      string          `db:"bank_name" json:"bank_name"`
	AccountNumber string          `db:"account_number" json:"account_number"`
	AccountHolder string          `db:"account_holder" json:"account_holder"`
	Status        Status          `db:"status" json:"status"`
	DecidedBy     *int            `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

type BankDetails struct {
	BankName      string `json:"bank_name" binding:"required,max=255"`
	AccountNumber string `json:"account_number" binding:"required,max=64"`
	AccountHolder string `json:"account_holder" binding:"required,max=255"`
}

type CreateRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"money"`
	BankDetails
}
