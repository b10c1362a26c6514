// Package ratelimit throttles UI actions so the page is not hammered with clicks.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter gates actions against a page.
//
// Wait blocks until the next action may proceed or ctx ends.
type Limiter interface {
	Wait(ctx context.Context) error
	Allow() bool
}

// ActionLimiter is a token bucket over page actions (clicks). A zero or
// negative rate means unlimited.
type ActionLimiter struct {
	limiter *rate.Limiter
}

// NewActionLimiter creates a limiter allowing perSecond actions with the given burst.
func NewActionLimiter(perSecond float64, burst int) *ActionLimiter {
	if perSecond <= 0 {
		return &ActionLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst <= 0 {
		burst = 1
	}
	return &ActionLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until an action is allowed.
func (a *ActionLimiter) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Allow reports whether an action may proceed right now, consuming a token if so.
func (a *ActionLimiter) Allow() bool {
	return a.limiter.Allow()
}

// Unlimited reports whether the limiter never blocks.
func (a *ActionLimiter) Unlimited() bool {
	return a.limiter.Limit() == rate.Inf
}
