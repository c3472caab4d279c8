package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelbook/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", func(c *gin.Context) { RespondError(c, err) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondError_Classified(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation(apperr.CodeInvalidDateRange, "check-out must be after check-in"), http.StatusBadRequest, apperr.CodeInvalidDateRange},
		{"not found", apperr.NotFound("booking not found"), http.StatusNotFound, apperr.CodeNotFound},
		{"conflict", apperr.Conflict(apperr.CodeRoomUnavailable, "room unavailable"), http.StatusConflict, apperr.CodeRoomUnavailable},
		{"forbidden", apperr.Forbidden("not your booking"), http.StatusForbidden, apperr.CodeForbidden},
		{"funds", apperr.InsufficientFunds(), http.StatusPaymentRequired, apperr.CodeInsufficientFunds},
		{"config", apperr.ConfigMissing("gateway secret missing"), http.StatusBadGateway, apperr.CodeConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRespondError_InternalHidesDetails(t *testing.T) {
	w, body := respond(t, errors.New("pq: relation \"wallets\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body.Error)
	assert.NotContains(t, w.Body.String(), "wallets")
}
