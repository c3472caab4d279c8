package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"
	"hotelbook/internal/config"
	"hotelbook/internal/db"
	"hotelbook/internal/logger"
	"hotelbook/internal/metrics"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "20060102150405"
	successCode    = "00"
	pendingStatus  = "01"
	orderPayerMark = "uid:"
)

var hundred = decimal.NewFromInt(100)

type Service interface {
	BuildPaymentRequest(ctx context.Context, amount decimal.Decimal, description, clientIP string) (*PaymentURLResponse, error)
	HandleCallback(ctx context.Context, params map[string]string) Ack
	ValidateReturn(ctx context.Context, params map[string]string) (*ReturnResult, error)
	QueryTransaction(ctx context.Context, ref string) (*Transaction, error)
}

type WalletStore interface {
	GetByUserID(ctx context.Context, userID int) (*wallet.Wallet, error)
	Credit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType wallet.TxType, reference string) (*wallet.Wallet, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendDepositReceived(ctx context.Context, to, name string, amount decimal.Decimal, ref string) error
}

type service struct {
	cfg        config.GatewayConfig
	repo       Repository
	wallets    WalletStore
	transactor db.Transactor
	guard      Guard
	querier    Querier
	users      UserLookup
	notifier   Notifier
	loc        *time.Location
	now        func() time.Time
	newRef     func() string
}

// NewService builds the reconciler. querier, users and notifier may be nil.
func NewService(
	cfg config.GatewayConfig,
	repo Repository,
	wallets WalletStore,
	transactor db.Transactor,
	guard Guard,
	querier Querier,
	users UserLookup,
	notifier Notifier,
) Service {
	return &service{
		cfg:        cfg,
		repo:       repo,
		wallets:    wallets,
		transactor: transactor,
		guard:      guard,
		querier:    querier,
		users:      users,
		notifier:   notifier,
		loc:        loadLocation(cfg.Timezone),
		now:        time.Now,
		newRef:     func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("gateway timezone unavailable, using UTC+7", "timezone", name, "error", err)
		return time.FixedZone("UTC+7", 7*3600)
	}
	return loc
}

func (s *service) configured() bool {
	return s.cfg.MerchantCode != "" && s.cfg.HashSecret != "" && s.cfg.PayURL != ""
}

// BuildPaymentRequest records a pending deposit for the caller and returns
// the signed gateway redirect URL.
func (s *service) BuildPaymentRequest(ctx context.Context, amount decimal.Decimal, description, clientIP string) (*PaymentURLResponse, error) {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return nil, apperr.Unauthenticated()
	}
	if err := auth.Authorize(p, auth.OpDeposit); err != nil {
		return nil, err
	}
	if !s.configured() {
		return nil, apperr.ConfigMissing("payment gateway is not configured")
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "amount must be positive")
	}

	w, err := s.wallets.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = "Wallet top-up"
	}
	ref := s.newRef()
	orderInfo := fmt.Sprintf("%s %s%d", description, orderPayerMark, p.UserID)
	now := s.now().In(s.loc)

	params := map[string]string{
		"vnp_Version":    s.cfg.Version,
		"vnp_Command":    "pay",
		"vnp_TmnCode":    s.cfg.MerchantCode,
		"vnp_Amount":     amount.Mul(hundred).StringFixed(0),
		"vnp_CurrCode":   s.cfg.Currency,
		"vnp_TxnRef":     ref,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     s.cfg.Locale,
		"vnp_ReturnUrl":  s.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(dateLayout),
		"vnp_ExpireDate": now.Add(15 * time.Minute).Format(dateLayout),
	}
	signature := Sign(s.cfg.HashSecret, params)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		_, err := s.repo.Create(ctx, tx, &Transaction{
			WalletID:    &w.ID,
			Amount:      amount,
			Direction:   DirectionDeposit,
			Status:      StatusPending,
			ExternalRef: ref,
			OrderInfo:   orderInfo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("deposit requested", "user_id", p.UserID, "ref", ref, "amount", amount.String())
	return &PaymentURLResponse{
		URL:         s.cfg.PayURL + "?" + Canonicalize(params) + "&" + ParamSecureHash + "=" + signature,
		ExternalRef: ref,
	}, nil
}

// HandleCallback reconciles one gateway notification. It never reveals why
// a callback was rejected and never credits a reference twice.
func (s *service) HandleCallback(ctx context.Context, params map[string]string) Ack {
	ref := params["vnp_TxnRef"]
	if ref == "" {
		metrics.RecordGatewayCallback("invalid_signature")
		return AckUnknown
	}

	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, ref)
		switch {
		case err != nil:
			logger.Warn("callback guard unavailable, relying on row lock", "ref", ref, "error", err)
		case !acquired:
			metrics.RecordGatewayCallback("in_flight")
			return AckUnknown
		default:
			defer s.guard.Release(ctx, ref)
		}
	}

	valid := Verify(s.cfg.HashSecret, params)
	ack, err := s.reconcile(ctx, ref, params, valid)
	if err != nil {
		logger.Error("callback reconciliation failed", "ref", ref, "error", err)
		metrics.RecordGatewayCallback("error")
		return AckUnknown
	}
	return ack
}

type deposit struct {
	userID int
	amount decimal.Decimal
}

// reconcile settles ref from signed gateway params inside one transaction.
func (s *service) reconcile(ctx context.Context, ref string, params map[string]string, valid bool) (Ack, error) {
	var (
		ack      Ack
		outcome  string
		credited *deposit
	)
	code := params["vnp_ResponseCode"]

	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		credited = nil

		t, err := s.repo.LockByRef(ctx, tx, ref)
		unmatched := errors.Is(err, ErrTransactionNotFound)
		if unmatched {
			t, err = s.recordUnmatched(ctx, tx, ref, params)
		}
		if err != nil {
			return err
		}

		if t.Status.Terminal() {
			ack, outcome = AckAlreadyConfirmed, "duplicate"
			return nil
		}

		fail := func(a Ack, why string) error {
			ack, outcome = a, why
			return s.repo.Finish(ctx, tx, t.ID, StatusFailed, code)
		}

		if !valid && !unmatched {
			// a forged callback must not decide a genuine pending deposit
			ack, outcome = AckUnknown, "invalid_signature"
			logger.Warn("unsigned callback for pending deposit ignored", "ref", ref)
			return nil
		}
		if !valid {
			return fail(AckUnknown, "invalid_signature")
		}
		if unmatched {
			return fail(AckOrderNotFound, "unknown_reference")
		}
		amount, err := parseAmount(params["vnp_Amount"])
		if err != nil || !amount.Equal(t.Amount) {
			return fail(AckInvalidAmount, "amount_mismatch")
		}
		if !succeeded(params) {
			return fail(AckConfirmed, "declined")
		}
		payerID, err := parsePayer(params["vnp_OrderInfo"])
		if err != nil {
			return fail(AckConfirmed, "unknown_payer")
		}

		if _, err := s.wallets.Credit(ctx, tx, payerID, amount, wallet.TxDeposit, "gateway:"+ref); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return fail(AckConfirmed, "unknown_payer")
			}
			return err
		}
		if err := s.repo.Finish(ctx, tx, t.ID, StatusSuccess, code); err != nil {
			return err
		}
		ack, outcome = AckConfirmed, "credited"
		credited = &deposit{userID: payerID, amount: amount}
		return nil
	})
	if err != nil {
		return AckUnknown, err
	}

	metrics.RecordGatewayCallback(outcome)
	if credited != nil {
		logger.Info("deposit credited", "ref", ref, "user_id", credited.userID, "amount", credited.amount.String())
		s.notifyDeposit(ctx, credited, ref)
	} else {
		logger.Info("gateway callback handled", "ref", ref, "outcome", outcome)
	}
	return ack, nil
}

// recordUnmatched stores a callback that has no local record so its outcome
// is still audited. Such a callback never credits a wallet.
func (s *service) recordUnmatched(ctx context.Context, tx sqlx.ExtContext, ref string, params map[string]string) (*Transaction, error) {
	amount, err := parseAmount(params["vnp_Amount"])
	if err != nil || amount.IsNegative() {
		amount = decimal.Zero
	}

	t := &Transaction{
		Amount:      amount,
		Direction:   DirectionDeposit,
		Status:      StatusPending,
		ExternalRef: ref,
		OrderInfo:   params["vnp_OrderInfo"],
	}
	if payerID, err := parsePayer(t.OrderInfo); err == nil {
		if w, err := s.wallets.GetByUserID(ctx, payerID); err == nil {
			t.WalletID = &w.ID
		}
	}
	return s.repo.Create(ctx, tx, t)
}

func (s *service) notifyDeposit(ctx context.Context, d *deposit, ref string) {
	if s.notifier == nil || s.users == nil {
		return
	}
	u, err := s.users.FindByID(ctx, d.userID)
	if err != nil {
		logger.Error("deposit notice skipped", "ref", ref, "error", err)
		return
	}
	if err := s.notifier.SendDepositReceived(ctx, u.Email, u.Name, d.amount, ref); err != nil {
		logger.Error("deposit notice not queued", "ref", ref, "error", err)
	}
}

// ValidateReturn checks the browser return URL. It reports the outcome and
// never changes state; the callback is authoritative.
func (s *service) ValidateReturn(ctx context.Context, params map[string]string) (*ReturnResult, error) {
	if !Verify(s.cfg.HashSecret, params) {
		return nil, apperr.New(apperr.KindIntegrity, apperr.CodeInvalidSignature, "invalid signature")
	}

	res := &ReturnResult{
		ExternalRef:  params["vnp_TxnRef"],
		ResponseCode: params["vnp_ResponseCode"],
		Success:      succeeded(params),
	}
	if t, err := s.repo.GetByRef(ctx, res.ExternalRef); err == nil {
		res.Status = t.Status
	}
	return res, nil
}

// QueryTransaction asks the gateway for the status of a pending deposit.
// A failed round-trip marks the deposit failed without touching a wallet.
func (s *service) QueryTransaction(ctx context.Context, ref string) (*Transaction, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpQueryGateway); err != nil {
		return nil, err
	}
	if !s.configured() || s.cfg.QueryURL == "" || s.querier == nil {
		return nil, apperr.ConfigMissing("payment gateway query endpoint is not configured")
	}

	t, err := s.repo.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return t, nil
	}

	now := s.now().In(s.loc)
	params := map[string]string{
		"vnp_RequestId":       s.newRef(),
		"vnp_Version":         s.cfg.Version,
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         s.cfg.MerchantCode,
		"vnp_TxnRef":          ref,
		"vnp_OrderInfo":       "Query " + ref,
		"vnp_TransactionDate": t.CreatedAt.In(s.loc).Format(dateLayout),
		"vnp_CreateDate":      now.Format(dateLayout),
		"vnp_IpAddr":          "127.0.0.1",
	}
	params[ParamSecureHash] = Sign(s.cfg.HashSecret, params)

	resp, err := s.querier.Query(ctx, params)
	if err == nil && !Verify(s.cfg.HashSecret, resp) {
		err = errors.New("query response signature mismatch")
	}
	if err != nil {
		s.failPending(ctx, ref)
		metrics.RecordGatewayCallback("query_failed")
		return nil, apperr.Wrap(apperr.KindExternalService, apperr.CodeGatewayUnavailable, "payment gateway unavailable", err)
	}

	if resp["vnp_TransactionStatus"] == pendingStatus {
		return t, nil
	}
	if resp["vnp_OrderInfo"] == "" {
		resp["vnp_OrderInfo"] = t.OrderInfo
	}
	if _, err := s.reconcile(ctx, ref, resp, true); err != nil {
		return nil, err
	}
	return s.repo.GetByRef(ctx, ref)
}

func (s *service) failPending(ctx context.Context, ref string) {
	err := s.transactor.WithinTx(context.WithoutCancel(ctx), func(ctx context.Context, tx sqlx.ExtContext) error {
		t, err := s.repo.LockByRef(ctx, tx, ref)
		if err != nil {
			return err
		}
		if t.Status.Terminal() {
			return nil
		}
		return s.repo.Finish(ctx, tx, t.ID, StatusFailed, "")
	})
	if err != nil {
		logger.Error("could not mark gateway transaction failed", "ref", ref, "error", err)
	}
}

func succeeded(params map[string]string) bool {
	if params["vnp_ResponseCode"] != successCode {
		return false
	}
	status, ok := params["vnp_TransactionStatus"]
	return !ok || status == successCode
}

// parseAmount converts the gateway's ×100 integer amount to currency units.
func parseAmount(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v.Div(hundred).Round(2), nil
}

// parsePayer extracts the user id following the last "uid:" marker.
func parsePayer(orderInfo string) (int, error) {
	i := strings.LastIndex(orderInfo, orderPayerMark)
	if i < 0 {
		return 0, fmt.Errorf("order info has no payer")
	}
	raw := orderInfo[i+len(orderPayerMark):]
	if j := strings.IndexByte(raw, ' '); j >= 0 {
		raw = raw[:j]
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("order info has no payer")
	}
	return id, nil
}
