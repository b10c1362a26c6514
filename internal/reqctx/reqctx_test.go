package reqctx

import (
	"context"
	"errors"
	"testing"
)

func TestWithRun(t *testing.T) {
	ctx := WithRun(context.Background())
	rc := FromContext(ctx)
	if len(rc.RunID) != 16 {
		t.Errorf("expected a 16 character run ID, got %q", rc.RunID)
	}
	if Logger(ctx) == nil {
		t.Error("expected a logger")
	}

	if got := FromContext(context.Background()).RunID; got != "unknown" {
		t.Errorf("expected placeholder run ID, got %q", got)
	}
}

func TestNewRunError(t *testing.T) {
	ctx := WithRun(context.Background())
	base := errors.New("boom")
	err := NewRunError(ctx, base)

	if !errors.Is(err, base) {
		t.Error("run error must unwrap to the original")
	}
	want := "[" + FromContext(ctx).RunID + "] boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if NewRunError(ctx, nil) != nil {
		t.Error("nil error must stay nil")
	}
}
