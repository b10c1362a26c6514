// Package drivertest provides an in-memory driver.PageDriver for tests.
package drivertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/law-makers/tablecrawl/pkg/models"
)

// NextSelector is the handle selector the fake uses for its next-page button.
const NextSelector = "next"

// OptionSelector is the handle selector the fake uses for filter options.
const OptionSelector = "option"

// Table is what the page shows for one filter combination.
type Table struct {
	Headers []string
	Pages   [][]models.Row
	// DisabledOn is the 1-based page on which the next button reports
	// disabled. Zero means "on the last page".
	DisabledOn int
	// EndlessNext keeps the next button enabled forever; pages past the end
	// read as empty.
	EndlessNext bool
	// NoNext removes the next button entirely.
	NoNext bool
}

// Page is a scripted page. Tables are keyed by "primary/secondary" labels;
// Primary lists the labels that belong to the primary dimension.
type Page struct {
	Options []models.FilterOption
	Primary map[string]bool
	Tables  map[string]Table
	// Missing selectors never appear; waiting on them times out.
	Missing map[string]bool
	// OnActivate runs after every click.
	OnActivate func(h models.Handle)

	mu        sync.Mutex
	primary   string
	secondary string
	page      int
	Clicks    []string
	Waits     []string
}

var (
	_ driver.PageDriver    = (*Page)(nil)
	_ driver.AbsenceWaiter = (*Page)(nil)
)

// NewPage builds a page whose options carry the given labels.
func NewPage(labels ...string) *Page {
	p := &Page{
		Primary: map[string]bool{},
		Tables:  map[string]Table{},
		Missing: map[string]bool{},
	}
	for i, l := range labels {
		p.Options = append(p.Options, models.FilterOption{
			Position: i,
			Label:    l,
			Value:    l,
			Handle:   models.Handle{Selector: OptionSelector, Index: i},
		})
	}
	return p
}

// Key builds the Tables key for a combination.
func Key(primary, secondary string) string {
	return primary + "/" + secondary
}

func (p *Page) current() Table {
	return p.Tables[Key(p.primary, p.secondary)]
}

// WaitFor implements driver.PageDriver.
func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.Waits = append(p.Waits, selector)
	missing := p.Missing[selector]
	p.mu.Unlock()
	if missing {
		return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

// WaitGone implements driver.AbsenceWaiter.
func (p *Page) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	return ctx.Err()
}

// ReadHeaders implements driver.PageDriver.
func (p *Page) ReadHeaders(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.current().Headers...), nil
}

// ReadRows implements driver.PageDriver.
func (p *Page) ReadRows(ctx context.Context, headerCount int) ([]models.Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.current()
	if p.page >= len(t.Pages) {
		return nil, nil
	}
	var out []models.Row
	for _, r := range t.Pages[p.page] {
		row := append(models.Row(nil), r...)
		if headerCount > 0 && len(row) > headerCount {
			row = row[:headerCount]
		}
		out = append(out, row)
	}
	return out, nil
}

// ListOptions implements driver.PageDriver.
func (p *Page) ListOptions(ctx context.Context, groupSelector string) ([]models.FilterOption, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.FilterOption(nil), p.Options...), nil
}

// Activate implements driver.PageDriver.
func (p *Page) Activate(ctx context.Context, h models.Handle) error {
	p.mu.Lock()
	switch h.Selector {
	case NextSelector:
		p.page++
		p.Clicks = append(p.Clicks, NextSelector)
	case OptionSelector:
		if h.Index < 0 || h.Index >= len(p.Options) {
			p.mu.Unlock()
			return driver.ErrElementNotFound
		}
		label := p.Options[h.Index].Label
		if p.Primary[label] {
			p.primary = label
		} else {
			p.secondary = label
		}
		p.page = 0
		p.Clicks = append(p.Clicks, label)
	default:
		p.mu.Unlock()
		return driver.ErrElementNotFound
	}
	hook := p.OnActivate
	p.mu.Unlock()

	if hook != nil {
		hook(h)
	}
	return nil
}

// FindNext implements driver.PageDriver.
func (p *Page) FindNext(ctx context.Context) (models.Handle, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current().NoNext {
		return models.Handle{}, false, nil
	}
	return models.Handle{Selector: NextSelector}, true, nil
}

// IsNextDisabled implements driver.PageDriver.
func (p *Page) IsNextDisabled(ctx context.Context, h models.Handle) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.current()
	if t.EndlessNext {
		return false, nil
	}
	last := len(t.Pages)
	if t.DisabledOn > 0 {
		last = t.DisabledOn
	}
	return p.page+1 >= last, nil
}

// ClickLog returns a copy of every click so far.
func (p *Page) ClickLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Clicks...)
}
