package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotelbook/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) CreateBooking(ctx context.Context, roomID int, checkIn, checkOut time.Time) (*Booking, error) {
	args := m.Called(ctx, roomID, checkIn, checkOut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) PayBooking(ctx context.Context, bookingID int) (*PayBookingResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PayBookingResponse), args.Error(1)
}

func (m *MockService) GetBooking(ctx context.Context, bookingID int) (*Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ListMyBookings(ctx context.Context) ([]Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockService) ListHotelBookings(ctx context.Context, hotelID int) ([]BookingWithDetails, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithDetails), args.Error(1)
}

func (m *MockService) RefundBooking(ctx context.Context, bookingID int) (*Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) ExpireStale(ctx context.Context, olderThan time.Duration) ([]int, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, 30*time.Minute)
	r := gin.New()
	r.POST("/bookings", h.Create)
	r.GET("/bookings", h.ListMine)
	r.GET("/bookings/:bookingID", h.Get)
	r.POST("/bookings/:bookingID/pay", h.Pay)
	r.GET("/owner/hotels/:hotelID/bookings", h.ListByHotel)
	r.POST("/admin/bookings/:bookingID/refund", h.Refund)
	r.POST("/admin/bookings/expire", h.Expire)
	return r
}

func TestCreateHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, 1, day("2026-11-01"), day("2026-11-03")).
		Return(&Booking{ID: 7, RoomID: 1, Status: StatusPending, TotalPrice: d("200")}, nil)

	body, _ := json.Marshal(CreateBookingRequest{RoomID: 1, CheckIn: "2026-11-01", CheckOut: "2026-11-03"})
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	svc.AssertExpectations(t)
}

func TestCreateHandler_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"room_id": invalid}`},
		{"missing room", `{"check_in":"2026-11-01","check_out":"2026-11-03"}`},
		{"bad date", `{"room_id":1,"check_in":"01/11/2026","check_out":"2026-11-03"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "CreateBooking")
		})
	}
}

func TestCreateHandler_Conflict(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateBooking", mock.Anything, 1, mock.Anything, mock.Anything).Return(nil, ErrRoomUnavailable)

	req := httptest.NewRequest(http.MethodPost, "/bookings",
		bytes.NewBufferString(`{"room_id":1,"check_in":"2026-11-01","check_out":"2026-11-03"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperr.CodeRoomUnavailable)
}

func TestPayHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient funds", apperr.InsufficientFunds(), http.StatusPaymentRequired},
		{"not guest", apperr.Forbidden("nope"), http.StatusForbidden},
		{"already paid", apperr.AlreadyProcessed("booking"), http.StatusConflict},
		{"missing", ErrBookingNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("PayBooking", mock.Anything, 7).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/bookings/7/pay", nil)
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestPayHandler_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("PayBooking", mock.Anything, 7).Return(&PayBookingResponse{
		Booking:    &Booking{ID: 7, Status: StatusPaid},
		ReceiptRef: "receipt:abc",
		SplitID:    3,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/bookings/7/pay", nil)
	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"receipt_ref":"receipt:abc"`)
	assert.Contains(t, w.Body.String(), `"settlement_id":3`)
}

func TestHandler_InvalidIDs(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	for _, path := range []string{"/bookings/abc", "/owner/hotels/x/bookings"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/bookings/abc/refund", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListHandlers(t *testing.T) {
	svc := new(MockService)
	svc.On("ListMyBookings", mock.Anything).Return([]Booking{{ID: 1}}, nil)
	svc.On("ListHotelBookings", mock.Anything, 2).Return(nil, apperr.Forbidden("hotel belongs to another owner"))
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owner/hotels/2/bookings", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExpireHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("ExpireStale", mock.Anything, 30*time.Minute).Return([]int{4}, nil).Once()
	svc.On("ExpireStale", mock.Anything, 2*time.Hour).Return([]int{}, nil).Once()
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/bookings/expire", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"expired":[4]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/bookings/expire?ttl=2h", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/bookings/expire?ttl=soon", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
