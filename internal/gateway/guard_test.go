package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	g := NewRedisGuard(rdb, time.Minute)
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "ref1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "ref1")
	require.NoError(t, err)
	assert.False(t, ok)

	g.Release(ctx, "ref1")
	ok, err = g.Acquire(ctx, "ref1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGuard_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	g := NewRedisGuard(rdb, time.Minute)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "ref1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := g.Acquire(ctx, "ref1")
	require.NoError(t, err)
	assert.True(t, ok)
}
