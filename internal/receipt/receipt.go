// Package receipt renders booking receipts and stores them as artifacts
// addressed by "receipt:<uuid>".
package receipt

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"hotelbook/internal/apperr"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const refPrefix = "receipt:"

type Data struct {
	BookingID int
	GuestName string
	HotelName string
	RoomName  string
	CheckIn   time.Time
	CheckOut  time.Time
	Nights    int
	Total     decimal.Decimal
	IssuedAt  time.Time
}

type Receipt struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BookingID int       `db:"booking_id" json:"booking_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var bodyTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(`HOTELBOOK RECEIPT
Booking:   #{{.BookingID}}
Guest:     {{.GuestName}}
Hotel:     {{.HotelName}}
Room:      {{.RoomName}}
Check-in:  {{date .CheckIn}}
Check-out: {{date .CheckOut}}
Nights:    {{.Nights}}
Total:     {{money .Total}}
Issued:    {{.IssuedAt.UTC.Format "2006-01-02T15:04:05Z07:00"}}
`))

func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}

// Store persists receipts inside the caller's transaction.
type Store interface {
	Save(ctx context.Context, q sqlx.ExtContext, d Data) (string, error)
	Get(ctx context.Context, ref string) (*Receipt, error)
}

type store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

// Save renders d and returns the artifact reference.
func (s *store) Save(ctx context.Context, q sqlx.ExtContext, d Data) (string, error) {
	body, err := Render(d)
	if err != nil {
		return "", err
	}

	id := uuid.New()
	_, err = q.ExecContext(ctx,
		`INSERT INTO receipts (id, booking_id, body) VALUES ($1, $2, $3)`,
		id, d.BookingID, body,
	)
	if err != nil {
		return "", fmt.Errorf("insert receipt: %w", err)
	}
	return Ref(id), nil
}

func (s *store) Get(ctx context.Context, ref string) (*Receipt, error) {
	id, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	var r Receipt
	err = s.db.GetContext(ctx, &r, `SELECT id, booking_id, body, created_at FROM receipts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("receipt not found")
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return &r, nil
}

func Ref(id uuid.UUID) string {
	return refPrefix + id.String()
}

func ParseRef(ref string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(ref, refPrefix)
	if !ok {
		return uuid.Nil, apperr.Validation(apperr.CodeInvalidInput, "malformed receipt reference")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.CodeInvalidInput, "malformed receipt reference")
	}
	return id, nil
}
