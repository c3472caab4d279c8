package settlement

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	status := Status(strings.ToUpper(c.Query("status")))
	splits, err := h.service.ListSplits(c.Request.Context(), status)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, splits)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.BadRequest(c, "Invalid settlement ID")
		return
	}
	lt, err := h.service.GetSplit(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lt)
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.BadRequest(c, "Invalid settlement ID")
		return
	}
	lt, err := h.service.ApproveSplit(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lt)
}

func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.BadRequest(c, "Invalid settlement ID")
		return
	}
	lt, err := h.service.RejectSplit(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lt)
}

func (h *Handler) GetCommission(c *gin.Context) {
	p, err := h.service.GetCommission(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CommissionResponse{Percent: p})
}

func (h *Handler) SetCommission(c *gin.Context) {
	var req SetCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}
	if err := h.service.SetCommission(c.Request.Context(), req.Percent); err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CommissionResponse{Percent: req.Percent})
}

// Revenue serves daily revenue for [from, to). Both default to the last 30
// days and use the YYYY-MM-DD layout.
func (h *Handler) Revenue(c *gin.Context) {
	to := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			api.BadRequest(c, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			api.BadRequest(c, "to must be YYYY-MM-DD")
			return
		}
		to = t
	}

	stats, err := h.service.RevenueByDay(c.Request.Context(), from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
