package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingExpirer struct {
	mu    sync.Mutex
	calls int
	ttls  []time.Duration
	err   error
	ch    chan struct{}
}

func (c *countingExpirer) ExpireStale(_ context.Context, ttl time.Duration) ([]int, error) {
	c.mu.Lock()
	c.calls++
	c.ttls = append(c.ttls, ttl)
	c.mu.Unlock()
	select {
	case c.ch <- struct{}{}:
	default:
	}
	return nil, c.err
}

func TestSweeper_RunsUntilCancelled(t *testing.T) {
	exp := &countingExpirer{ch: make(chan struct{}, 8), err: errors.New("db down")}
	sw := NewSweeper(exp, 30*time.Minute, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-exp.ch:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}

	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.GreaterOrEqual(t, exp.calls, 2)
	assert.Equal(t, 30*time.Minute, exp.ttls[0])
}

func TestSweeper_NonPositiveSettingsDisableSweep(t *testing.T) {
	tests := []struct {
		name          string
		ttl, interval time.Duration
	}{
		{"zero interval", 30 * time.Minute, 0},
		{"negative interval", 30 * time.Minute, -time.Second},
		{"zero ttl", 0, time.Minute},
		{"negative ttl", -time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &countingExpirer{ch: make(chan struct{}, 1)}

			assert.NotPanics(t, func() {
				NewSweeper(exp, tt.ttl, tt.interval).Run(context.Background())
			})
			assert.Zero(t, exp.calls)
		})
	}
}
