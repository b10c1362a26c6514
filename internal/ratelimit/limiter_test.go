package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestActionLimiter_UnlimitedNeverBlocks(t *testing.T) {
	l := NewActionLimiter(0, 0)
	if !l.Unlimited() {
		t.Fatal("expected unlimited limiter")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}

func TestActionLimiter_BurstThenDeny(t *testing.T) {
	l := NewActionLimiter(1, 2)
	if !l.Allow() || !l.Allow() {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow() {
		t.Fatal("expected third immediate action to be denied")
	}
}

func TestActionLimiter_WaitHonoursContext(t *testing.T) {
	l := NewActionLimiter(0.001, 1)
	l.Allow()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
