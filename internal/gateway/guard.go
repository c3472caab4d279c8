package gateway

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardPrefix = "gateway:callback:"

// Guard marks a callback reference as in flight so concurrent deliveries of
// the same reference are not processed side by side.
type Guard interface {
	Acquire(ctx context.Context, ref string) (bool, error)
	Release(ctx context.Context, ref string)
}

type redisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGuard holds each reference for at most ttl, so a crashed worker
// does not block redelivery forever.
func NewRedisGuard(rdb *redis.Client, ttl time.Duration) Guard {
	return &redisGuard{rdb: rdb, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, ref string) (bool, error) {
	return g.rdb.SetNX(ctx, guardPrefix+ref, "1", g.ttl).Result()
}

func (g *redisGuard) Release(ctx context.Context, ref string) {
	g.rdb.Del(context.WithoutCancel(ctx), guardPrefix+ref)
}
