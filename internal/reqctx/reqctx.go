// Package reqctx tags a run with an ID that follows it through logs and errors.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type key int

const runKey key = 0

// RunContext identifies one extraction run.
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRun attaches a fresh RunContext to ctx, together with a logger that
// carries the run ID.
func WithRun(ctx context.Context) context.Context {
	rc := &RunContext{RunID: generateID(), StartTime: time.Now()}
	ctx = context.WithValue(ctx, runKey, rc)
	logger := log.With().Str("run", rc.RunID).Logger()
	return logger.WithContext(ctx)
}

// FromContext returns the run attached to ctx, or a placeholder.
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{RunID: "unknown", StartTime: time.Now()}
}

// Logger returns the run's logger, falling back to the global one.
func Logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run it happened in.
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError tags err with the run ID from ctx.
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: FromContext(ctx).RunID, Err: err}
}
