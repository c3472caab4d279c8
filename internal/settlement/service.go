package settlement

import (
	"context"
	"fmt"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"
	"hotelbook/internal/db"
	"hotelbook/internal/logger"
	"hotelbook/internal/metrics"
	"hotelbook/internal/wallet"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Service interface {
	ApproveSplit(ctx context.Context, id int) (*LedgerTransaction, error)
	RejectSplit(ctx context.Context, id int) (*LedgerTransaction, error)
	GetSplit(ctx context.Context, id int) (*LedgerTransaction, error)
	ListSplits(ctx context.Context, status Status) ([]LedgerTransaction, error)
	GetCommission(ctx context.Context) (decimal.Decimal, error)
	SetCommission(ctx context.Context, percent decimal.Decimal) error
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueByDay, error)
}

type service struct {
	repo        Repository
	commission  CommissionRepository
	wallets     wallet.Repository
	transactor  db.Transactor
	adminUserID int
}

// NewService builds the approval service. Admin shares are credited to
// platformAdminID, or to the approving admin when it is zero.
func NewService(repo Repository, commission CommissionRepository, wallets wallet.Repository, transactor db.Transactor, platformAdminID int) Service {
	return &service{
		repo:        repo,
		commission:  commission,
		wallets:     wallets,
		transactor:  transactor,
		adminUserID: platformAdminID,
	}
}

// ApproveSplit credits the owner and admin wallets and marks the split
// APPROVED, all in one transaction.
func (s *service) ApproveSplit(ctx context.Context, id int) (*LedgerTransaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpDecideSettlement); err != nil {
		return nil, err
	}

	adminID := s.adminUserID
	if adminID == 0 {
		adminID = p.UserID
	}

	var out *LedgerTransaction
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		lt, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if lt.Status != StatusPending {
			return apperr.AlreadyProcessed("settlement")
		}

		ref := fmt.Sprintf("settlement:%d", lt.ID)
		if lt.OwnerShare.IsPositive() {
			if _, err := s.wallets.Credit(ctx, tx, lt.OwnerID, lt.OwnerShare, wallet.TxSettlementOwner, ref); err != nil {
				return err
			}
		}
		if lt.AdminShare.IsPositive() {
			if _, err := s.wallets.Credit(ctx, tx, adminID, lt.AdminShare, wallet.TxSettlementAdmin, ref); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(ctx, tx, lt.ID, StatusApproved, p.UserID); err != nil {
			return err
		}
		lt.Status = StatusApproved
		lt.DecidedBy = &p.UserID
		out = lt
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSettlement(string(StatusApproved))
	logger.Info("settlement approved",
		"settlement_id", out.ID,
		"booking_id", out.BookingID,
		"owner_share", out.OwnerShare.String(),
		"admin_share", out.AdminShare.String(),
	)
	return out, nil
}

func (s *service) RejectSplit(ctx context.Context, id int) (*LedgerTransaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpDecideSettlement); err != nil {
		return nil, err
	}

	var out *LedgerTransaction
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		lt, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if lt.Status != StatusPending {
			return apperr.AlreadyProcessed("settlement")
		}
		if err := s.repo.UpdateStatus(ctx, tx, lt.ID, StatusRejected, p.UserID); err != nil {
			return err
		}
		lt.Status = StatusRejected
		lt.DecidedBy = &p.UserID
		out = lt
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSettlement(string(StatusRejected))
	return out, nil
}

func (s *service) GetSplit(ctx context.Context, id int) (*LedgerTransaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpListSettlements); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListSplits(ctx context.Context, status Status) ([]LedgerTransaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpListSettlements); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown settlement status")
	}
	return s.repo.List(ctx, status)
}

func (s *service) GetCommission(ctx context.Context) (decimal.Decimal, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpManageCommission); err != nil {
		return decimal.Zero, err
	}
	return s.commission.GetPercent(ctx, nil)
}

// SetCommission affects splits recorded afterwards only.
func (s *service) SetCommission(ctx context.Context, percent decimal.Decimal) error {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpManageCommission); err != nil {
		return err
	}
	if err := ValidatePercent(percent); err != nil {
		return err
	}
	if err := s.commission.SetPercent(ctx, percent); err != nil {
		return err
	}
	logger.Info("commission updated", "percent", percent.String(), "admin_id", p.UserID)
	return nil
}

func (s *service) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueByDay, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewRevenue); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apperr.Validation(apperr.CodeInvalidDateRange, "to must be after from")
	}
	return s.repo.RevenueByDay(ctx, from, to)
}
