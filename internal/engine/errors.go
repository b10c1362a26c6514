// internal/engine/errors.go
package engine

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a specific failure of the extraction pipeline.
type ErrorCode string

const (
	ErrCodeDiscovery      ErrorCode = "DISCOVERY"
	ErrCodeEmptySelection ErrorCode = "EMPTY_SELECTION"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"
	ErrCodeNoHeaders      ErrorCode = "NO_HEADERS"
	ErrCodeHeaderMismatch ErrorCode = "HEADER_MISMATCH"
	ErrCodeSink           ErrorCode = "SINK"
	ErrCodeCancelled      ErrorCode = "CANCELLED"
	ErrCodeDriver         ErrorCode = "DRIVER"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrDiscovery      = &Error{Code: ErrCodeDiscovery}
	ErrEmptySelection = &Error{Code: ErrCodeEmptySelection}
	ErrTimeout        = &Error{Code: ErrCodeTimeout}
	ErrNoHeaders      = &Error{Code: ErrCodeNoHeaders}
	ErrHeaderMismatch = &Error{Code: ErrCodeHeaderMismatch}
	ErrSink           = &Error{Code: ErrCodeSink}
	ErrCancelled      = &Error{Code: ErrCodeCancelled}
	ErrDriver         = &Error{Code: ErrCodeDriver}
)

// Error wraps a pipeline failure with the operation and selector involved.
type Error struct {
	Code     ErrorCode
	Op       string
	Selector string
	Err      error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Selector != "" {
		msg += fmt.Sprintf(" (%s)", e.Selector)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a new *Error.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// WithSelector records the selector the operation was waiting on.
func (e *Error) WithSelector(selector string) *Error {
	e.Selector = selector
	return e
}

// IsFatal reports whether err must abort the whole run. Only per-combination
// table problems are recoverable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNoHeaders) && !errors.Is(err, ErrHeaderMismatch)
}

// classify turns a driver error into a pipeline error. Cancellation of ctx
// wins over whatever the driver reported.
func classify(ctx context.Context, op, selector string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return NewError(ErrCodeCancelled, op, context.Canceled).WithSelector(selector)
	case errors.Is(err, context.Canceled):
		return NewError(ErrCodeCancelled, op, err).WithSelector(selector)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrCodeTimeout, op, err).WithSelector(selector)
	default:
		return NewError(ErrCodeDriver, op, err).WithSelector(selector)
	}
}
