package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWaitEnforcesSpacing(t *testing.T) {
	interval := 50 * time.Millisecond
	l := NewLimiter(interval, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 2*interval-5*time.Millisecond,
		"three consecutive calls must be spaced by the minimum interval")
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := NewLimiter(time.Minute, zap.NewNop())
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	assert.Error(t, err)
}

func TestNewLimiterDefaultsInterval(t *testing.T) {
	l := NewLimiter(0, zap.NewNop())
	assert.Equal(t, DefaultInterval, l.Interval())
}

func TestRetryAfter(t *testing.T) {
	l := NewLimiter(2*time.Second, zap.NewNop())

	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil error", nil, 2 * time.Second},
		{"plain hint", errors.New("rate limited, retry after 1500 ms"), 1500 * time.Millisecond},
		{"no space before unit", errors.New("429: please retry in 800ms"), 800 * time.Millisecond},
		{"mixed case", errors.New("Retry After 250 MS"), 250 * time.Millisecond},
		{"no hint", errors.New("too many requests"), 2 * time.Second},
		{"zero hint", errors.New("retry after 0 ms"), 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.RetryAfter(tt.err))
		})
	}
}
