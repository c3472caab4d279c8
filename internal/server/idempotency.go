package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hotelbook/internal/api"
	"hotelbook/internal/auth"
	"hotelbook/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
	maxIdempotencyKeyLen = 128
	idempotencyTimeout   = 2 * time.Second
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response when a caller repeats an
// Idempotency-Key on the same route. Keys are scoped per user and path.
// Requests without the header pass through. Server errors are not stored so
// the caller can retry them.
func IdempotencyMiddleware(cache *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			api.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		p, _ := auth.GetPrincipal(c)
		cacheKey := fmt.Sprintf("%s%d:%s:%s:%s", idempotencyPrefix, p.UserID, c.Request.Method, c.Request.URL.Path, key)

		ctx, cancel := context.WithTimeout(c.Request.Context(), idempotencyTimeout)
		defer cancel()

		cached, err := cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			replay(c, key, cached)
			return
		case !errors.Is(err, redis.Nil):
			logger.Error("idempotency lookup failed", "key", key, "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "idempotency store unavailable"})
			return
		}

		reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
		if err != nil {
			logger.Error("idempotency reservation failed", "key", key, "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "idempotency store unavailable"})
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, api.ErrorResponse{Error: "duplicate request currently processing"})
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		persistCtx, persistCancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), idempotencyTimeout)
		defer persistCancel()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			cache.Del(persistCtx, cacheKey)
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.String(),
		})
		if err == nil {
			err = cache.Set(persistCtx, cacheKey, payload, ttl).Err()
		}
		if err != nil {
			logger.Error("idempotent response not stored", "key", key, "error", err)
			cache.Del(persistCtx, cacheKey)
		}
	}
}

func replay(c *gin.Context, key, cached string) {
	if cached == inProgressMarker {
		c.AbortWithStatusJSON(http.StatusConflict, api.ErrorResponse{Error: "duplicate request currently processing"})
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		logger.Warn("stored idempotent response unreadable", "key", key, "error", err)
		c.AbortWithStatusJSON(http.StatusConflict, api.ErrorResponse{Error: "duplicate request"})
		return
	}

	c.Header(replayedHeader, "true")
	c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
	c.Abort()
}
