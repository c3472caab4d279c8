// Package dbtest holds sqlmock helpers shared by repository tests.
package dbtest

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewMock returns a sqlx handle backed by sqlmock. Expectations are verified
// when the test finishes.
func NewMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	})
	return sqlxDB, mock
}

type decimalArg struct {
	want decimal.Decimal
}

func (a decimalArg) Match(v driver.Value) bool {
	var got decimal.Decimal
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return false
		}
		got = d
	case []byte:
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return false
		}
		got = d
	case float64:
		got = decimal.NewFromFloat(x)
	case int64:
		got = decimal.NewFromInt(x)
	default:
		return false
	}
	return got.Equal(a.want)
}

func (a decimalArg) String() string {
	return fmt.Sprintf("decimal(%s)", a.want)
}

// Decimal matches a NUMERIC query argument by value, ignoring scale.
func Decimal(s string) sqlmock.Argument {
	return decimalArg{want: decimal.RequireFromString(s)}
}

// SerialTransactor runs each unit of work under one mutex, standing in for
// row locks when services are tested against in-memory stores. Tx is the
// handle passed to fn; nil unless set.
type SerialTransactor struct {
	mu        sync.Mutex
	Tx        sqlx.ExtContext
	Commits   int
	Rollbacks int
}

func (s *SerialTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx sqlx.ExtContext) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(ctx, s.Tx); err != nil {
		s.Rollbacks++
		return err
	}
	s.Commits++
	return nil
}
