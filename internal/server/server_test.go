package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotelbook/internal/auth"
	"hotelbook/internal/booking"
	"hotelbook/internal/config"
	"hotelbook/internal/gateway"
	"hotelbook/internal/hotel"
	"hotelbook/internal/settlement"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"
	"hotelbook/internal/withdrawal"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// newTestServer wires handlers without services: only requests rejected by
// middleware may be sent.
func newTestServer(t *testing.T, checks map[string]HealthCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{JWTSecret: testSecret, IdempotencyTTL: time.Hour}
	h := Handlers{
		User:       user.NewHandler(nil),
		Hotel:      hotel.NewHandler(nil),
		Booking:    booking.NewHandler(nil, time.Minute),
		Wallet:     wallet.NewHandler(nil),
		Settlement: settlement.NewHandler(nil),
		Gateway:    gateway.NewHandler(nil),
		Withdrawal: withdrawal.NewHandler(nil),
	}
	return New(context.Background(), cfg, h, rdb, checks).Handler()
}

func tokenFor(t *testing.T, p auth.Principal) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(p, "someone@example.com", testSecret)
	require.NoError(t, err)
	return token
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	handler := newTestServer(t, nil)

	for _, path := range []string{"/me", "/bookings", "/wallet", "/withdrawals", "/admin/settlements", "/owner/hotels/1/bookings"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestServer_RoleGroups(t *testing.T) {
	handler := newTestServer(t, nil)
	guest := tokenFor(t, auth.Principal{UserID: 3, Role: auth.RoleGuest})
	owner := tokenFor(t, auth.Principal{UserID: 5, Role: auth.RoleOwner})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"guest on admin", http.MethodGet, "/admin/settlements", guest},
		{"owner on admin", http.MethodPost, "/admin/withdrawals/1/approve", owner},
		{"owner on gateway query", http.MethodPost, "/admin/payments/abc/query", owner},
		{"guest on owner", http.MethodPost, "/owner/hotels", guest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestServer_Health(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		handler := newTestServer(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, w.Body.String())
	})

	t.Run("failing check degrades", func(t *testing.T) {
		handler := newTestServer(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`, w.Body.String())
	})

	t.Run("no checks", func(t *testing.T) {
		handler := newTestServer(t, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})
}

func TestServer_RequestIDEchoed(t *testing.T) {
	handler := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))
}
