package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/apperr"
	"hotelbook/internal/auth"
	"hotelbook/internal/db"
	"hotelbook/internal/email"
	"hotelbook/internal/hotel"
	"hotelbook/internal/logger"
	"hotelbook/internal/metrics"
	"hotelbook/internal/receipt"
	"hotelbook/internal/settlement"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateBooking(ctx context.Context, roomID int, checkIn, checkOut time.Time) (*Booking, error)
	PayBooking(ctx context.Context, bookingID int) (*PayBookingResponse, error)
	GetBooking(ctx context.Context, bookingID int) (*Booking, error)
	ListMyBookings(ctx context.Context) ([]Booking, error)
	ListHotelBookings(ctx context.Context, hotelID int) ([]BookingWithDetails, error)
	RefundBooking(ctx context.Context, bookingID int) (*Booking, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) ([]int, error)
}

type RoomStore interface {
	LockRoom(ctx context.Context, q sqlx.ExtContext, roomID int) (*hotel.RoomDetails, error)
	GetRoomDetails(ctx context.Context, q sqlx.QueryerContext, roomID int) (*hotel.RoomDetails, error)
	GetHotel(ctx context.Context, id int) (*hotel.Hotel, error)
}

type WalletStore interface {
	Debit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType wallet.TxType, reference string) (*wallet.Wallet, error)
	Credit(ctx context.Context, q sqlx.ExtContext, userID int, amount decimal.Decimal, txType wallet.TxType, reference string) (*wallet.Wallet, error)
}

type SplitRecorder interface {
	RecordSplit(ctx context.Context, tx sqlx.ExtContext, bookingID, ownerID int, gross decimal.Decimal) (*settlement.LedgerTransaction, error)
	VoidSplit(ctx context.Context, tx sqlx.ExtContext, bookingID, decidedBy int) error
}

type ReceiptStore interface {
	Save(ctx context.Context, q sqlx.ExtContext, d receipt.Data) (string, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to, name string, n email.BookingNotice) error
	SendRefundNotice(ctx context.Context, to, name string, n email.BookingNotice) error
}

type service struct {
	bookingRepo Repository
	rooms       RoomStore
	wallets     WalletStore
	splitter    SplitRecorder
	receipts    ReceiptStore
	users       UserLookup
	notifier    Notifier
	transactor  db.Transactor
	now         func() time.Time
}

// NewService wires the booking state machine. notifier may be nil.
func NewService(
	bookingRepo Repository,
	rooms RoomStore,
	wallets WalletStore,
	splitter SplitRecorder,
	receipts ReceiptStore,
	users UserLookup,
	notifier Notifier,
	transactor db.Transactor,
) Service {
	return &service{
		bookingRepo: bookingRepo,
		rooms:       rooms,
		wallets:     wallets,
		splitter:    splitter,
		receipts:    receipts,
		users:       users,
		notifier:    notifier,
		transactor:  transactor,
		now:         time.Now,
	}
}

// CreateBooking reserves [checkIn, checkOut) on the room as PENDING. The room
// row lock serializes concurrent reservations of the same room.
func (s *service) CreateBooking(ctx context.Context, roomID int, checkIn, checkOut time.Time) (*Booking, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpCreateBooking); err != nil {
		return nil, err
	}

	checkIn, checkOut = dateOf(checkIn), dateOf(checkOut)
	today := dateOf(s.now().UTC())
	if !checkOut.After(checkIn) || checkIn.Before(today) {
		return nil, ErrInvalidDateRange
	}

	var created *Booking
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		room, err := s.rooms.LockRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if !room.HotelApproved {
			return ErrHotelNotApproved
		}
		if room.Status != hotel.RoomAvailable {
			return ErrRoomUnavailable
		}

		overlap, err := s.bookingRepo.HasOverlap(ctx, tx, roomID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if overlap {
			return ErrRoomUnavailable
		}

		nights := decimal.NewFromInt(int64(Nights(checkIn, checkOut)))
		created, err = s.bookingRepo.Create(ctx, tx, &Booking{
			RoomID:     roomID,
			HotelID:    room.HotelID,
			GuestID:    p.UserID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			TotalPrice: room.NightlyPrice().Mul(nights).Round(2),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRoomUnavailable) {
			metrics.RecordBookingConflict()
		}
		return nil, err
	}

	metrics.RecordBookingTransition(string(StatusPending))
	logger.Info("booking created",
		"booking_id", created.ID,
		"room_id", roomID,
		"guest_id", p.UserID,
		"total", created.TotalPrice.String(),
	)
	return created, nil
}

// PayBooking debits the guest, issues the receipt, marks the booking PAID and
// records the settlement split in one transaction. Any failure leaves the
// booking PENDING and the wallet untouched.
func (s *service) PayBooking(ctx context.Context, bookingID int) (*PayBookingResponse, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpPayBooking); err != nil {
		return nil, err
	}

	var (
		paid  *Booking
		room  *hotel.RoomDetails
		guest *user.User
		resp  PayBookingResponse
	)
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		b, err := s.bookingRepo.LockByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.GuestID != p.UserID {
			return apperr.Forbidden("only the guest who made the booking can pay for it")
		}
		if b.Status != StatusPending {
			return apperr.AlreadyProcessed("booking")
		}

		room, err = s.rooms.GetRoomDetails(ctx, tx, b.RoomID)
		if err != nil {
			return err
		}
		guest, err = s.users.FindByID(ctx, b.GuestID)
		if err != nil {
			return err
		}

		if _, err := s.wallets.Debit(ctx, tx, b.GuestID, b.TotalPrice, wallet.TxBookingPayment, fmt.Sprintf("booking:%d", b.ID)); err != nil {
			return err
		}

		ref, err := s.receipts.Save(ctx, tx, receipt.Data{
			BookingID: b.ID,
			GuestName: guest.Name,
			HotelName: room.HotelName,
			RoomName:  room.Name,
			CheckIn:   b.CheckIn,
			CheckOut:  b.CheckOut,
			Nights:    b.Nights(),
			Total:     b.TotalPrice,
			IssuedAt:  s.now(),
		})
		if err != nil {
			return err
		}

		if err := s.bookingRepo.MarkPaid(ctx, tx, b.ID, ref); err != nil {
			return err
		}

		lt, err := s.splitter.RecordSplit(ctx, tx, b.ID, room.OwnerID, b.TotalPrice)
		if err != nil {
			return err
		}

		b.Status = StatusPaid
		b.ReceiptRef = ref
		paid = b
		resp = PayBookingResponse{Booking: b, ReceiptRef: ref, SplitID: lt.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(string(StatusPaid))
	logger.Info("booking paid",
		"booking_id", paid.ID,
		"guest_id", paid.GuestID,
		"total", paid.TotalPrice.String(),
		"receipt", paid.ReceiptRef,
	)

	if s.notifier != nil {
		if err := s.notifier.SendBookingConfirmation(ctx, guest.Email, guest.Name, notice(paid, room)); err != nil {
			logger.Error("booking confirmation not queued", "booking_id", paid.ID, "error", err)
		}
	}
	return &resp, nil
}

// GetBooking returns a booking to its guest, the hotel owner or an admin.
func (s *service) GetBooking(ctx context.Context, bookingID int) (*Booking, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewOwnBookings); err != nil {
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if p.Role == auth.RoleAdmin || b.GuestID == p.UserID {
		return b, nil
	}
	if p.Role == auth.RoleOwner {
		h, err := s.rooms.GetHotel(ctx, b.HotelID)
		if err != nil {
			return nil, err
		}
		if h.OwnerID == p.UserID {
			return b, nil
		}
	}
	return nil, apperr.Forbidden("booking belongs to another guest")
}

func (s *service) ListMyBookings(ctx context.Context) ([]Booking, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpViewOwnBookings); err != nil {
		return nil, err
	}
	return s.bookingRepo.ListByGuest(ctx, p.UserID)
}

func (s *service) ListHotelBookings(ctx context.Context, hotelID int) ([]BookingWithDetails, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpListHotelBookings); err != nil {
		return nil, err
	}

	h, err := s.rooms.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if p.Role != auth.RoleAdmin && h.OwnerID != p.UserID {
		return nil, apperr.Forbidden("hotel belongs to another owner")
	}
	return s.bookingRepo.ListByHotel(ctx, hotelID)
}

// RefundBooking returns a PAID booking's total to the guest. The split must
// still be PENDING; it is rejected in the same transaction.
func (s *service) RefundBooking(ctx context.Context, bookingID int) (*Booking, error) {
	p, _ := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(p, auth.OpRefundBooking); err != nil {
		return nil, err
	}

	var refunded *Booking
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		b, err := s.bookingRepo.LockByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != StatusPaid {
			return apperr.AlreadyProcessed("booking")
		}

		if err := s.splitter.VoidSplit(ctx, tx, b.ID, p.UserID); err != nil {
			return err
		}
		if _, err := s.wallets.Credit(ctx, tx, b.GuestID, b.TotalPrice, wallet.TxBookingRefund, fmt.Sprintf("refund:booking:%d", b.ID)); err != nil {
			return err
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b.ID, StatusPaid, StatusRefunded); err != nil {
			return err
		}

		b.Status = StatusRefunded
		refunded = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(string(StatusRefunded))
	logger.Info("booking refunded", "booking_id", refunded.ID, "admin_id", p.UserID, "amount", refunded.TotalPrice.String())

	s.notifyRefund(ctx, refunded)
	return refunded, nil
}

func (s *service) notifyRefund(ctx context.Context, b *Booking) {
	if s.notifier == nil {
		return
	}
	guest, err := s.users.FindByID(ctx, b.GuestID)
	if err != nil {
		logger.Error("refund notice skipped", "booking_id", b.ID, "error", err)
		return
	}
	room, err := s.rooms.GetRoomDetails(ctx, nil, b.RoomID)
	if err != nil {
		logger.Error("refund notice skipped", "booking_id", b.ID, "error", err)
		return
	}
	if err := s.notifier.SendRefundNotice(ctx, guest.Email, guest.Name, notice(b, room)); err != nil {
		logger.Error("refund notice not queued", "booking_id", b.ID, "error", err)
	}
}

// ExpireStale fails PENDING bookings older than olderThan, releasing their
// dates. It runs as a system task and performs no principal check.
func (s *service) ExpireStale(ctx context.Context, olderThan time.Duration) ([]int, error) {
	if olderThan <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "ttl must be positive")
	}

	cutoff := s.now().Add(-olderThan)
	var ids []int
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx sqlx.ExtContext) error {
		var err error
		ids, err = s.bookingRepo.ExpirePending(ctx, tx, cutoff)
		return err
	})
	if err != nil {
		return nil, err
	}

	for range ids {
		metrics.RecordBookingTransition(string(StatusFailed))
	}
	if len(ids) > 0 {
		logger.Info("stale bookings expired", "count", len(ids), "cutoff", cutoff)
	}
	return ids, nil
}

func notice(b *Booking, room *hotel.RoomDetails) email.BookingNotice {
	return email.BookingNotice{
		BookingID:  b.ID,
		HotelName:  room.HotelName,
		RoomName:   room.Name,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Total:      b.TotalPrice,
		ReceiptRef: b.ReceiptRef,
	}
}
