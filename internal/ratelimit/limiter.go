package ratelimit

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultInterval spaces outbound provider calls for a 30 requests/minute quota.
const DefaultInterval = 2 * time.Second

var retryHintRe = regexp.MustCompile(`(?i)retry.*?(\d+)\s*ms`)

// Limiter enforces a minimum interval between outbound provider calls.
// It is shared process-wide: every provider instance must route through the
// same Limiter so concurrent requests cannot exceed the quota together.
type Limiter struct {
	limiter  *rate.Limiter
	interval time.Duration
	logger   *zap.Logger
}

// NewLimiter creates a limiter allowing one call per interval, with no burst.
// A non-positive interval falls back to DefaultInterval.
func NewLimiter(interval time.Duration, logger *zap.Logger) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		logger:   logger,
	}
}

// Wait blocks until at least the configured interval has elapsed since the
// last granted call, then records the new call. It must be invoked
// immediately before every outbound network call, including per-item
// fallback calls inside a batch.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	return nil
}

// Interval returns the configured minimum spacing between calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// RetryAfter extracts a "retry after N ms" hint from a provider error.
// When the error carries no parsable hint, the configured interval is used.
func (l *Limiter) RetryAfter(err error) time.Duration {
	if err == nil {
		return l.interval
	}
	m := retryHintRe.FindStringSubmatch(err.Error())
	if m == nil {
		return l.interval
	}
	ms, perr := strconv.Atoi(m[1])
	if perr != nil || ms <= 0 {
		return l.interval
	}
	d := time.Duration(ms) * time.Millisecond
	l.logger.Debug("Parsed retry hint from provider error", zap.Duration("retry_after", d))
	return d
}
