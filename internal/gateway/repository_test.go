package gateway

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/db/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var txCols = []string{"id", "wallet_id", "amount", "direction", "status", "external_ref", "order_info", "response_code", "created_at", "updated_at"}

func TestRepositoryCreate(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()
	walletID := 70

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gateway_transactions (wallet_id, amount, direction, status, external_ref, order_info, response_code)")).
		WithArgs(70, dbtest.Decimal("100"), "deposit", "pending", "ref1", "Wallet top-up uid:7", "").
		WillReturnRows(sqlmock.NewRows(txCols).
			AddRow(1, 70, "100.00", "deposit", "pending", "ref1", "Wallet top-up uid:7", "", now, now))

	tx, err := repo.Create(context.Background(), sqlxDB, &Transaction{
		WalletID: &walletID, Amount: d("100"), Direction: DirectionDeposit, Status: StatusPending,
		ExternalRef: "ref1", OrderInfo: "Wallet top-up uid:7",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.ID)
	require.NotNil(t, tx.WalletID)
	assert.Equal(t, 70, *tx.WalletID)
	assert.True(t, tx.Amount.Equal(d("100")))
}

func TestRepositoryCreate_WithoutWallet(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gateway_transactions")).
		WithArgs(nil, dbtest.Decimal("0"), "deposit", "pending", "stray", "", "").
		WillReturnRows(sqlmock.NewRows(txCols).
			AddRow(2, nil, "0.00", "deposit", "pending", "stray", "", "", now, now))

	tx, err := repo.Create(context.Background(), sqlxDB, &Transaction{
		Direction: DirectionDeposit, Status: StatusPending, ExternalRef: "stray",
	})
	require.NoError(t, err)
	assert.Nil(t, tx.WalletID)
}

func TestRepositoryCreate_DuplicateReference(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO gateway_transactions")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), sqlxDB, &Transaction{ExternalRef: "ref1"})
	assert.Equal(t, apperr.CodeDuplicate, apperr.CodeOf(err))
}

func TestRepositoryLockByRef(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM gateway_transactions WHERE external_ref = $1 FOR UPDATE")).
		WithArgs("ref1").
		WillReturnRows(sqlmock.NewRows(txCols).
			AddRow(1, 70, "100.00", "deposit", "success", "ref1", "", "00", now, now))

	tx, err := repo.LockByRef(context.Background(), sqlxDB, "ref1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.True(t, tx.Status.Terminal())
}

func TestRepositoryGetByRef_NotFound(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("FROM gateway_transactions WHERE external_ref = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(txCols))

	_, err := repo.GetByRef(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrTransactionNotFound))
}

func TestRepositoryFinish(t *testing.T) {
	sqlxDB, mock := dbtest.NewMock(t)
	repo := NewRepository(sqlxDB)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND status = 'pending'")).
		WithArgs("success", "00", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND status = 'pending'")).
		WithArgs("failed", "24", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Finish(context.Background(), sqlxDB, 1, StatusSuccess, "00"))

	err := repo.Finish(context.Background(), sqlxDB, 1, StatusFailed, "24")
	assert.Equal(t, apperr.CodeAlreadyProcessed, apperr.CodeOf(err))
}
