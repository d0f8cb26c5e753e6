// Package ratelimit throttles outbound API calls to a configurable
// requests-per-second rate. Microsoft Graph applies per-mailbox
// throttling, so keeping the client below the service limit avoids
// 429 responses instead of handling them after the fact.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket limiter with an explicit disabled
// state. A disabled Limiter never blocks and never denies.
type Limiter struct {
	limiter *rate.Limiter
	rps     float64
	enabled bool
}

// New creates a Limiter allowing rps requests per second with a burst
// of one. Zero or negative rps disables limiting entirely.
func New(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{enabled: false}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		rps:     rps,
		enabled: true,
	}
}

// Enabled reports whether rate limiting is active.
func (l *Limiter) Enabled() bool {
	return l.enabled
}

// RPS returns the configured requests-per-second rate, 0 when disabled.
func (l *Limiter) RPS() float64 {
	if !l.enabled {
		return 0
	}
	return l.rps
}

// Wait blocks until the next request is permitted or the context is
// canceled. It returns immediately when limiting is disabled.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.enabled {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without
// waiting. Always true when limiting is disabled.
func (l *Limiter) Allow() bool {
	if !l.enabled {
		return true
	}
	return l.limiter.Allow()
}

// Reserve books the next permitted slot and returns the reservation so
// the caller can inspect the required delay. Returns nil when limiting
// is disabled.
func (l *Limiter) Reserve() *rate.Reservation {
	if !l.enabled {
		return nil
	}
	return l.limiter.Reserve()
}

// String describes the limiter configuration for log output.
func (l *Limiter) String() string {
	if !l.enabled {
		return "rate limiting disabled"
	}
	if l.rps < 1 {
		interval := time.Duration(float64(time.Second) / l.rps)
		return fmt.Sprintf("rate limit: 1 request per %s", interval)
	}
	return fmt.Sprintf("rate limit: %.2f rps", l.rps)
}
