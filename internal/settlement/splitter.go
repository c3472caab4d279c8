package settlement

import (
	"context"

	"hotelbook/internal/apperr"
	"hotelbook/internal/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var ErrInvalidPercent = apperr.Validation(apperr.CodeInvalidPercent, "commission percent must be between 0 and 1")

// ValidatePercent reports ErrInvalidPercent unless 0 <= p <= 1.
func ValidatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidPercent
	}
	return nil
}

// ComputeSplit rounds the admin share to the minor unit and gives the
// remainder to the owner, so adminShare + ownerShare == gross exactly.
func ComputeSplit(gross, percent decimal.Decimal) (adminShare, ownerShare decimal.Decimal) {
	gross = gross.Round(2)
	adminShare = gross.Mul(percent).Round(2)
	ownerShare = gross.Sub(adminShare)
	return adminShare, ownerShare
}

// Splitter records the owner/admin split for a paid booking inside the
// payment transaction.
type Splitter struct {
	repo       Repository
	commission CommissionRepository
}

func NewSplitter(repo Repository, commission CommissionRepository) *Splitter {
	return &Splitter{repo: repo, commission: commission}
}

func (s *Splitter) RecordSplit(ctx context.Context, tx sqlx.ExtContext, bookingID, ownerID int, gross decimal.Decimal) (*LedgerTransaction, error) {
	percent, err := s.commission.GetPercent(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := ValidatePercent(percent); err != nil {
		return nil, err
	}

	adminShare, ownerShare := ComputeSplit(gross, percent)
	lt, err := s.repo.Create(ctx, tx, &LedgerTransaction{
		BookingID:         bookingID,
		OwnerID:           ownerID,
		Gross:             gross.Round(2),
		AdminShare:        adminShare,
		OwnerShare:        ownerShare,
		CommissionPercent: percent,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordSettlement(string(StatusPending))
	return lt, nil
}

// VoidSplit rejects the still-pending split of bookingID. Used when a paid
// booking is refunded before settlement.
func (s *Splitter) VoidSplit(ctx context.Context, tx sqlx.ExtContext, bookingID, decidedBy int) error {
	lt, err := s.repo.LockByBookingID(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if lt.Status != StatusPending {
		return apperr.AlreadyProcessed("settlement")
	}
	if err := s.repo.UpdateStatus(ctx, tx, lt.ID, StatusRejected, decidedBy); err != nil {
		return err
	}
	metrics.RecordSettlement(string(StatusRejected))
	return nil
}
