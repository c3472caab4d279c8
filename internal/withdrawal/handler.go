package withdrawal

import (
	"net/http"
	"strconv"
	"strings"

	"hotelbook/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	out, err := h.service.CreateWithdrawal(c.Request.Context(), req.Amount, req.BankDetails)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) ListMine(c *gin.Context) {
	out, err := h.service.ListMine(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	out, err := h.service.GetWithdrawal(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) List(c *gin.Context) {
	status := Status(strings.ToLower(c.Query("status")))
	out, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	out, err := h.service.ApproveWithdrawal(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	out, err := h.service.RejectWithdrawal(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func requestIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.BadRequest(c, "Invalid withdrawal ID")
		return 0, false
	}
	return id, true
}
