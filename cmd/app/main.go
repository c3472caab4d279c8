package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelbook/internal/booking"
	"hotelbook/internal/config"
	"hotelbook/internal/db"
	"hotelbook/internal/email"
	"hotelbook/internal/gateway"
	"hotelbook/internal/hotel"
	"hotelbook/internal/logger"
	"hotelbook/internal/receipt"
	"hotelbook/internal/server"
	"hotelbook/internal/settlement"
	"hotelbook/internal/user"
	"hotelbook/internal/wallet"
	"hotelbook/internal/withdrawal"

	"github.com/redis/go-redis/v9"
)

const callbackGuardTTL = 30 * time.Second

func main() {
	logger.Init()
	logger.Info("Starting hotelbook application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emailService := email.New(email.Config{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		SMTPHost: cfg.SMTPHost,
		SMTPPort: cfg.SMTPPort,
		SMTPUser: cfg.SMTPUser,
		SMTPPass: cfg.SMTPPass,
	}, rdb)
	go emailService.Start(ctx)
	logger.Info("Email service initialized")

	if cfg.UsesDefaultJWTSecret() {
		logger.Warn("JWT_SECRET not set, signing tokens with the development default")
	}
	if cfg.PlatformAdminUserID == 0 {
		logger.Warn("PLATFORM_ADMIN_USER_ID not set, admin shares go to the approving admin")
	}

	transactor := db.NewTxManager(database)

	userRepo := user.NewRepository(database)
	walletRepo := wallet.NewRepository(database)
	hotelRepo := hotel.NewRepository(database)
	bookingRepo := booking.NewRepository(database)
	settlementRepo := settlement.NewRepository(database)
	commissionRepo := settlement.NewCommissionRepository(database)
	gatewayRepo := gateway.NewRepository(database)
	withdrawalRepo := withdrawal.NewRepository(database)
	receipts := receipt.NewStore(database)

	userService := user.NewService(userRepo, walletRepo, transactor, cfg.JWTSecret)
	hotelService := hotel.NewService(hotelRepo)
	walletService := wallet.NewService(walletRepo)
	settlementService := settlement.NewService(settlementRepo, commissionRepo, walletRepo, transactor, cfg.PlatformAdminUserID)
	bookingService := booking.NewService(
		bookingRepo,
		hotelRepo,
		walletRepo,
		settlement.NewSplitter(settlementRepo, commissionRepo),
		receipts,
		userRepo,
		emailService,
		transactor,
	)
	gatewayService := gateway.NewService(
		cfg.Gateway,
		gatewayRepo,
		walletRepo,
		transactor,
		gateway.NewRedisGuard(rdb, callbackGuardTTL),
		gateway.NewHTTPQuerier(cfg.Gateway.QueryURL, cfg.Gateway.Timeout),
		userRepo,
		emailService,
	)
	withdrawalService := withdrawal.NewService(withdrawalRepo, walletRepo, userRepo, emailService, transactor)

	go booking.NewSweeper(bookingService, cfg.PendingBookingTTL, cfg.SweepInterval).Run(ctx)

	srv := server.New(ctx, cfg, server.Handlers{
		User:       user.NewHandler(userService),
		Hotel:      hotel.NewHandler(hotelService),
		Booking:    booking.NewHandler(bookingService, cfg.PendingBookingTTL),
		Wallet:     wallet.NewHandler(walletService),
		Settlement: settlement.NewHandler(settlementService),
		Gateway:    gateway.NewHandler(gatewayService),
		Withdrawal: withdrawal.NewHandler(withdrawalService),
	}, rdb, map[string]server.HealthCheck{
		"postgres": database.PingContext,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
