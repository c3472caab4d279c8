package gateway

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type Transaction struct {
	ID           int             `db:"id" json:"id"`
	WalletID     *int            `db:"wallet_id" json:"wallet_id,omitempty"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Direction    Direction       `db:"direction" json:"direction"`
	Status       Status          `db:"status" json:"status"`
	ExternalRef  string          `db:"external_ref" json:"external_ref"`
	OrderInfo    string          `db:"order_info" json:"order_info"`
	ResponseCode string          `db:"response_code" json:"response_code"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"money"`
	Description string          `json:"description" binding:"max=200"`
}

type PaymentURLResponse struct {
	URL         string `json:"url"`
	ExternalRef string `json:"external_ref"`
}

// Ack is the body the gateway expects in reply to a callback.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

var (
	AckConfirmed        = Ack{RspCode: "00", Message: "Confirm Success"}
	AckOrderNotFound    = Ack{RspCode: "01", Message: "Order not found"}
	AckAlreadyConfirmed = Ack{RspCode: "02", Message: "Order already confirmed"}
	AckInvalidAmount    = Ack{RspCode: "04", Message: "Invalid amount"}
	AckUnknown          = Ack{RspCode: "99", Message: "Unknown error"}
)

type ReturnResult struct {
	ExternalRef  string `json:"external_ref"`
	ResponseCode string `json:"response_code"`
	Success      bool   `json:"success"`
	Status       Status `json:"status,omitempty"`
}
