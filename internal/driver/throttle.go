package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/tablecrawl/internal/ratelimit"
	"github.com/law-makers/tablecrawl/pkg/models"
)

// Throttle wraps d so every Activate first waits on limiter. Reads and waits
// pass straight through.
func Throttle(d PageDriver, limiter ratelimit.Limiter) PageDriver {
	if limiter == nil {
		return d
	}
	return &throttled{PageDriver: d, limiter: limiter}
}

type throttled struct {
	PageDriver
	limiter ratelimit.Limiter
}

func (t *throttled) Activate(ctx context.Context, h models.Handle) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("action limiter: %w", err)
	}
	return t.PageDriver.Activate(ctx, h)
}

// WaitGone forwards to the wrapped driver when it supports absence waits.
func (t *throttled) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	if w, ok := t.PageDriver.(AbsenceWaiter); ok {
		return w.WaitGone(ctx, selector, timeout)
	}
	return nil
}
