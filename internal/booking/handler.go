package booking

import (
	"net/http"
	"strconv"
	"time"

	"hotelbook/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	ttl     time.Duration
}

// NewHandler serves booking routes. ttl is the default age used by the admin
// expire endpoint.
func NewHandler(service Service, ttl time.Duration) *Handler {
	return &Handler{service: service, ttl: ttl}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	checkIn, err := time.Parse(time.DateOnly, req.CheckIn)
	if err != nil {
		api.BadRequest(c, "check_in must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.Parse(time.DateOnly, req.CheckOut)
	if err != nil {
		api.BadRequest(c, "check_out must be YYYY-MM-DD")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req.RoomID, checkIn, checkOut)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) Pay(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	resp, err := h.service.PayBooking(c.Request.Context(), bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListMine(c *gin.Context) {
	bookings, err := h.service.ListMyBookings(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) Get(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) ListByHotel(c *gin.Context) {
	hotelID, err := strconv.Atoi(c.Param("hotelID"))
	if err != nil {
		api.BadRequest(c, "Invalid hotel ID")
		return
	}

	bookings, err := h.service.ListHotelBookings(c.Request.Context(), hotelID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) Refund(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	b, err := h.service.RefundBooking(c.Request.Context(), bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Expire runs one sweep on demand. The optional ttl query overrides the
// configured age, e.g. ?ttl=45m.
func (h *Handler) Expire(c *gin.Context) {
	ttl := h.ttl
	if v := c.Query("ttl"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			api.BadRequest(c, "ttl must be a duration such as 30m")
			return
		}
		ttl = d
	}

	ids, err := h.service.ExpireStale(c.Request.Context(), ttl)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExpireResponse{Expired: ids})
}

func bookingIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		api.BadRequest(c, "Invalid booking ID")
		return 0, false
	}
	return id, true
}
