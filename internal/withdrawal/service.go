// Package withdrawal processes cash-out requests. Creation checks the
// balance against other pending requests; the wallet is only debited when an
// admin resolves the request.
package withdrawal

import (
	"context"
	"fmt"
	"strings"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"
	"hotelbook/internal/db"
	"hotelbook/internal/email"
	"hotelbook/internal/logger"
	"hotelbook/internal/metrics"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateWithdrawal(ctx context.Context, amount decimal.Decimal, bank BankDetails) (*Request, error)
	ApproveWithdrawal(ctx context.Context, id int) (*Request, error)
	RejectWithdrawal(ctx context.Context, id int) (*Request, error)
	GetWithdrawal(ctx context.Context, id int) (*Request, error)
	ListMine(ctx context.Context) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
}

type WalletStore interface {
	LockByUserID(ctx context.Context, q sqlx.ExtContext, userID int) (*wallet.Wallet, error)
	Debit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType wallet.TxType, reference string) (*wallet.Wallet, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendWithdrawalDecision(ctx context.Context, to, name string, n email.WithdrawalNotice) error
}

type service struct {
	repo       Repository
	wallets    WalletStore
	users      UserLookup
	notifier   Notifier
	transactor db.Transactor
}

func NewService(repo Repository, wallets WalletStore, users UserLookup, notifier Notifier, transactor db.Transactor) Service {
	return &service{
		repo:       repo,
		wallets:    wallets,
		users:      users,
		notifier:   notifier,
		transactor: transactor,
	}
}

func (s *service) CreateWithdrawal(ctx context.Context, amount decimal.Decimal, bank BankDetails) (*Request, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpCreateWithdrawal); err != nil {
		return nil, err
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "amount must be positive")
	}
	bank.BankName = strings.TrimSpace(bank.BankName)
	bank.AccountNumber = strings.TrimSpace(bank.AccountNumber)
	bank.AccountHolder = strings.TrimSpace(bank.AccountHolder)
	if bank.BankName == "" || bank.AccountNumber == "" || bank.AccountHolder == "" {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "bank name, account number and account holder are required")
	}

	var out *Request
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		// The wallet lock serializes concurrent requests by the same user.
		w, err := s.wallets.LockByUserID(ctx, tx, p.UserID)
		if err != nil {
			return err
		}
		pending, err := s.repo.PendingTotal(ctx, tx, p.UserID)
		if err != nil {
			return err
		}
		if w.Balance.Sub(pending).LessThan(amount) {
			return apperr.InsufficientFunds()
		}

		out, err = s.repo.Create(ctx, tx, &Request{
			WalletID:      w.ID,
			UserID:        p.UserID,
			Amount:        amount,
			BankName:      bank.BankName,
			AccountNumber: bank.AccountNumber,
			AccountHolder: bank.AccountHolder,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal(string(StatusPending))
	logger.Info("withdrawal requested", "request_id", out.ID, "user_id", p.UserID, "amount", amount.String())
	return out, nil
}

// ApproveWithdrawal debits the wallet and resolves the request in one
// transaction. The balance is checked again at this point.
func (s *service) ApproveWithdrawal(ctx context.Context, id int) (*Request, error) {
	return s.decide(ctx, id, StatusResolved)
}

func (s *service) RejectWithdrawal(ctx context.Context, id int) (*Request, error) {
	return s.decide(ctx, id, StatusRefuse)
}

func (s *service) decide(ctx context.Context, id int, status Status) (*Request, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpDecideWithdrawal); err != nil {
		return nil, err
	}

	var out *Request
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		req, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return apperr.AlreadyProcessed("withdrawal request")
		}

		if status == StatusResolved {
			ref := fmt.Sprintf("withdrawal:%d", req.ID)
			if _, err := s.wallets.Debit(ctx, tx, req.UserID, req.Amount, wallet.TxWithdrawal, ref); err != nil {
				return err
			}
		}
		if err := s.repo.Decide(ctx, tx, req.ID, status, p.UserID); err != nil {
			return err
		}
		req.Status = status
		req.DecidedBy = &p.UserID
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal(string(status))
	logger.Info("withdrawal decided",
		"request_id", out.ID,
		"status", string(status),
		"amount", out.Amount.String(),
		"admin_id", p.UserID,
	)
	s.notify(ctx, out)
	return out, nil
}

func (s *service) notify(ctx context.Context, req *Request) {
	if s.notifier == nil {
		return
	}
	u, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		logger.Error("withdrawal notice skipped", "request_id", req.ID, "error", err)
		return
	}
	n := email.WithdrawalNotice{
		RequestID: req.ID,
		Amount:    req.Amount,
		BankName:  req.BankName,
		Approved:  req.Status == StatusResolved,
	}
	if err := s.notifier.SendWithdrawalDecision(ctx, u.Email, u.Name, n); err != nil {
		logger.Error("withdrawal notice not queued", "request_id", req.ID, "error", err)
	}
}

// GetWithdrawal is visible to the requesting user and to admins.
func (s *service) GetWithdrawal(ctx context.Context, id int) (*Request, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewOwnWithdrawal); err != nil {
		return nil, err
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != p.UserID && !p.IsAdmin() {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (s *service) ListMine(ctx context.Context) ([]Request, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewOwnWithdrawal); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, p.UserID)
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Request, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpListWithdrawals); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "unknown withdrawal status")
	}
	return s.repo.ListByStatus(ctx, status)
}
