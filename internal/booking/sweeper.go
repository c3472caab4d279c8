package booking

import (
	"context"
	"time"

	"hotelbook/internal/logger"
)

type Expirer interface {
	ExpireStale(ctx context.Context, olderThan time.Duration) ([]int, error)
}

// Sweeper periodically fails PENDING bookings that outlived their TTL.
type Sweeper struct {
	expirer  Expirer
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(expirer Expirer, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{expirer: expirer, ttl: ttl, interval: interval}
}

// Run sweeps once immediately and then on every tick until ctx is done.
// It returns at once when ttl or interval is not positive.
func (s *Sweeper) Run(ctx context.Context) {
	if s.ttl <= 0 || s.interval <= 0 {
		logger.Error("booking sweeper disabled", "ttl", s.ttl.String(), "interval", s.interval.String())
		return
	}
	logger.Info("booking sweeper started", "ttl", s.ttl.String(), "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.expirer.ExpireStale(ctx, s.ttl); err != nil && ctx.Err() == nil {
		logger.Error("booking sweep failed", "error", err)
	}
}
