package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// LedgerTransaction is the revenue split recorded for one paid booking.
type LedgerTransaction struct {
	ID                int             `db:"id" json:"id"`
	BookingID         int             `db:"booking_id" json:"booking_id"`
	OwnerID           int             `db:"owner_id" json:"owner_id"`
	Gross             decimal.Decimal `db:"gross" json:"gross"`
	AdminShare        decimal.Decimal `db:"admin_share" json:"admin_share"`
	OwnerShare        decimal.Decimal `db:"owner_share" json:"owner_share"`
	CommissionPercent decimal.Decimal `db:"commission_percent" json:"commission_percent"`
	Status            Status          `db:"status" json:"status"`
	DecidedBy         *int            `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type RevenueByDay struct {
	Bucket     string          `db:"bucket" json:"bucket"`
	Approved   int             `db:"approved" json:"approved"`
	Pending    int             `db:"pending" json:"pending"`
	Rejected   int             `db:"rejected" json:"rejected"`
	Gross      decimal.Decimal `db:"gross" json:"gross"`
	AdminShare decimal.Decimal `db:"admin_share" json:"admin_share"`
	OwnerShare decimal.Decimal `db:"owner_share" json:"owner_share"`
}

type SetCommissionRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

type CommissionResponse struct {
	Percent decimal.Decimal `json:"percent"`
}
