package api

import (
	"net/http"

	"hotelbook/internal/apperr"
	"hotelbook/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse reports "ok" or "degraded" with the result of each
// dependency check.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindAuthorization:     http.StatusForbidden,
	apperr.KindUnauthenticated:   http.StatusUnauthorized,
	apperr.KindInsufficientFunds: http.StatusPaymentRequired,
	apperr.KindExternalService:   http.StatusBadGateway,
	apperr.KindIntegrity:         http.StatusBadRequest,
	apperr.KindInternal:          http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes err as a structured failure. Internal errors are logged
// with full context and reach the client only as a generic message.
func RespondError(c *gin.Context, err error) {
	e := apperr.As(err)
	status := StatusFor(e.Kind)

	if e.Kind == apperr.KindInternal {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		_ = c.Error(err)
		c.JSON(status, ErrorResponse{Error: "internal error", Code: apperr.CodeInternal})
		return
	}

	c.JSON(status, ErrorResponse{Error: e.Message, Code: e.Code})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: apperr.CodeInvalidInput})
}
