package engine

import (
	"context"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/rs/zerolog/log"
)

// Settler pauses after a UI action so the table can re-render.
type Settler interface {
	Settle(ctx context.Context, d time.Duration) error
}

// SleepSettler waits the full delay.
type SleepSettler struct{}

// Settle implements Settler.
func (SleepSettler) Settle(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// LoadingSettler waits a short grace period for the loading mask to show up,
// then until it is gone, bounded by the delay plus Timeout.
type LoadingSettler struct {
	Waiter   driver.AbsenceWaiter
	Selector string
	Grace    time.Duration
	Timeout  time.Duration
}

// Settle implements Settler.
func (s LoadingSettler) Settle(ctx context.Context, d time.Duration) error {
	if s.Waiter == nil || s.Selector == "" {
		return sleep(ctx, d)
	}
	grace := s.Grace
	if grace <= 0 || grace > d {
		grace = min(d, 300*time.Millisecond)
	}
	if err := sleep(ctx, grace); err != nil {
		return err
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = d
	}
	if err := s.Waiter.WaitGone(ctx, s.Selector, timeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A mask that never clears is not fatal; the row wait that follows
		// still bounds the page.
		log.Warn().Err(err).Str("selector", s.Selector).Msg("Loading mask did not clear")
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
