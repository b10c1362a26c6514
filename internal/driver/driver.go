// Package driver talks to the page hosting the table.
//
// The engine depends only on PageDriver; ChromeDriver implements it on top of
// chromedp, and drivertest.Page implements it in memory for tests.
package driver

import (
	"context"
	"errors"
	"time"

	"github.com/law-makers/tablecrawl/pkg/models"
)

// ErrElementNotFound is returned when an activation handle no longer matches anything.
var ErrElementNotFound = errors.New("element not found")

// PageDriver is the capability set the extraction pipeline needs from a page.
type PageDriver interface {
	// WaitFor blocks until an element matching selector exists. It returns an
	// error wrapping context.DeadlineExceeded when timeout elapses first.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// ReadHeaders returns the header cell texts of the current table, trimmed.
	ReadHeaders(ctx context.Context) ([]string, error)

	// ReadRows returns the current page's rows, each truncated to headerCount cells.
	ReadRows(ctx context.Context, headerCount int) ([]models.Row, error)

	// ListOptions returns every option found under groupSelector, in document order.
	ListOptions(ctx context.Context, groupSelector string) ([]models.FilterOption, error)

	// Activate clicks the element behind h.
	Activate(ctx context.Context, h models.Handle) error

	// FindNext resolves the next-page control. ok is false when none exists.
	FindNext(ctx context.Context) (h models.Handle, ok bool, err error)

	// IsNextDisabled reports whether the next-page control is disabled or hidden.
	IsNextDisabled(ctx context.Context, h models.Handle) (bool, error)
}

// AbsenceWaiter is implemented by drivers that can wait for an element to go away.
type AbsenceWaiter interface {
	WaitGone(ctx context.Context, selector string, timeout time.Duration) error
}
