package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        int             `db:"id" json:"id"`
	UserID    int             `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// TxType labels a wallet audit row.
type TxType string

const (
	TxDeposit         TxType = "deposit"
	TxBookingPayment  TxType = "booking_payment"
	TxBookingRefund   TxType = "booking_refund"
	TxSettlementOwner TxType = "settlement_owner"
	TxSettlementAdmin TxType = "settlement_admin"
	TxWithdrawal      TxType = "withdrawal"
)

type Transaction struct {
	ID           int             `db:"id" json:"id"`
	WalletID     int             `db:"wallet_id" json:"wallet_id"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Type         TxType          `db:"type" json:"type"`
	Reference    string          `db:"reference" json:"reference"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
