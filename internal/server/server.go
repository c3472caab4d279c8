package server

import (
	"context"
	"net/http"
	"time"

	"hotelbook/internal/api"
	"hotelbook/internal/auth"
	"hotelbook/internal/booking"
	"hotelbook/internal/config"
	"hotelbook/internal/gateway"
	"hotelbook/internal/hotel"
	"hotelbook/internal/settlement"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"
	"hotelbook/internal/withdrawal"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups the HTTP handlers of every component.
type Handlers struct {
	User       *user.Handler
	Hotel      *hotel.Handler
	Booking    *booking.Handler
	Wallet     *wallet.Handler
	Settlement *settlement.Handler
	Gateway    *gateway.Handler
	Withdrawal *withdrawal.Handler
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
}

// New builds the router. cache backs the Idempotency-Key store; ctx bounds
// background work owned by middleware.
func New(ctx context.Context, cfg *config.Config, h Handlers, cache *redis.Client, checks map[string]HealthCheck) *Server {
	api.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimitMiddleware(NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)))
	}

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	// The gateway calls these without a bearer token; the signature is the
	// credential.
	payments := router.Group("/payments")
	{
		payments.GET("/callback", h.Gateway.Callback)
		payments.GET("/return", h.Gateway.Return)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.User.GetMe)

		protected.GET("/hotels", h.Hotel.ListHotels)
		protected.GET("/hotels/:hotelID/rooms", h.Hotel.ListRooms)

		protected.POST("/bookings", h.Booking.Create)
		protected.GET("/bookings", h.Booking.ListMine)
		protected.GET("/bookings/:bookingID", h.Booking.Get)
		protected.POST("/bookings/:bookingID/pay", IdempotencyMiddleware(cache, cfg.IdempotencyTTL), h.Booking.Pay)

		protected.GET("/wallet", h.Wallet.GetBalance)
		protected.GET("/wallet/transactions", h.Wallet.ListTransactions)

		protected.POST("/payments/deposit", IdempotencyMiddleware(cache, cfg.IdempotencyTTL), h.Gateway.Deposit)

		protected.POST("/withdrawals", IdempotencyMiddleware(cache, cfg.IdempotencyTTL), h.Withdrawal.Create)
		protected.GET("/withdrawals", h.Withdrawal.ListMine)
		protected.GET("/withdrawals/:id", h.Withdrawal.Get)
	}

	owner := router.Group("/owner")
	owner.Use(authMiddleware, auth.RequireOperation(auth.OpManageHotels))
	{
		owner.POST("/hotels", h.Hotel.CreateHotel)
		owner.POST("/hotels/:hotelID/rooms", h.Hotel.CreateRoom)
		owner.GET("/hotels/:hotelID/bookings", h.Booking.ListByHotel)
	}

	// Services authorize each admin operation; the group check rejects other
	// roles before any body is parsed.
	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireOperation(auth.OpApproveHotel))
	{
		admin.POST("/hotels/:hotelID/approve", h.Hotel.ApproveHotel)

		admin.POST("/bookings/:bookingID/refund", h.Booking.Refund)
		admin.POST("/bookings/expire", auth.RequireOperation(auth.OpExpireBookings), h.Booking.Expire)

		admin.GET("/settlements", h.Settlement.List)
		admin.GET("/settlements/:id", h.Settlement.Get)
		admin.POST("/settlements/:id/approve", h.Settlement.Approve)
		admin.POST("/settlements/:id/reject", h.Settlement.Reject)
		admin.GET("/commission", h.Settlement.GetCommission)
		admin.PUT("/commission", h.Settlement.SetCommission)
		admin.GET("/analytics/revenue", h.Settlement.Revenue)

		admin.GET("/withdrawals", h.Withdrawal.List)
		admin.POST("/withdrawals/:id/approve", h.Withdrawal.Approve)
		admin.POST("/withdrawals/:id/reject", h.Withdrawal.Reject)

		admin.POST("/payments/:ref/query", h.Gateway.Query)
	}

	return &Server{
		router: router,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	s.httpServer.Addr = ":" + port
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
