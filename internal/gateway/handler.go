package gateway

import (
	"net/http"

	"hotelbook/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	resp, err := h.service.BuildPaymentRequest(c.Request.Context(), req.Amount, req.Description, c.ClientIP())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Callback always answers 200; the gateway reads the outcome from RspCode.
func (h *Handler) Callback(c *gin.Context) {
	ack := h.service.HandleCallback(c.Request.Context(), Flatten(c.Request.URL.Query()))
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) Return(c *gin.Context) {
	res, err := h.service.ValidateReturn(c.Request.Context(), Flatten(c.Request.URL.Query()))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Query(c *gin.Context) {
	t, err := h.service.QueryTransaction(c.Request.Context(), c.Param("ref"))
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
