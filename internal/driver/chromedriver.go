package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// ChromeDriver implements PageDriver for one Chrome tab.
type ChromeDriver struct {
	tab    context.Context
	cancel context.CancelFunc
	sel    Selectors
}

var (
	_ PageDriver    = (*ChromeDriver)(nil)
	_ AbsenceWaiter = (*ChromeDriver)(nil)
)

// scoped derives a chromedp context from the tab that also ends when ctx ends.
func (d *ChromeDriver) scoped(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		c      context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		c, cancel = context.WithTimeout(d.tab, timeout)
	} else {
		c, cancel = context.WithCancel(d.tab)
	}
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

// WaitFor blocks until selector matches an element in the DOM.
func (d *ChromeDriver) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	c, done := d.scoped(ctx, timeout)
	defer done()

	err := chromedp.Run(c, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(c.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
	}
	return fmt.Errorf("waiting for %q: %w", selector, err)
}

// WaitGone blocks until selector no longer matches anything.
func (d *ChromeDriver) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	c, done := d.scoped(ctx, timeout)
	defer done()

	err := chromedp.Run(c, chromedp.WaitNotPresent(selector, chromedp.ByQuery))
	if err == nil {
		return nil
	}
	if errors.Is(c.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("waiting for %q to disappear: %w", selector, context.DeadlineExceeded)
	}
	return fmt.Errorf("waiting for %q to disappear: %w", selector, err)
}

// snapshot captures the current DOM and parses it.
func (d *ChromeDriver) snapshot(ctx context.Context) (*goquery.Document, error) {
	c, done := d.scoped(ctx, 0)
	defer done()

	var html string
	if err := chromedp.Run(c, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}
	return ParseDocument(html)
}

// ReadHeaders implements PageDriver.
func (d *ChromeDriver) ReadHeaders(ctx context.Context) ([]string, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ParseHeaders(doc, d.sel), nil
}

// ReadRows implements PageDriver.
func (d *ChromeDriver) ReadRows(ctx context.Context, headerCount int) ([]models.Row, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ParseRows(doc, d.sel, headerCount), nil
}

// ListOptions implements PageDriver.
func (d *ChromeDriver) ListOptions(ctx context.Context, groupSelector string) ([]models.FilterOption, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ParseOptions(doc, d.sel, groupSelector), nil
}

// FindNext implements PageDriver.
func (d *ChromeDriver) FindNext(ctx context.Context) (models.Handle, bool, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return models.Handle{}, false, err
	}
	h, ok := ParseNext(doc, d.sel)
	return h, ok, nil
}

// IsNextDisabled implements PageDriver.
func (d *ChromeDriver) IsNextDisabled(ctx context.Context, h models.Handle) (bool, error) {
	doc, err := d.snapshot(ctx)
	if err != nil {
		return false, err
	}
	return ParseDisabled(doc, h), nil
}

// Activate clicks the element in page context. A DOM click is used rather
// than a synthesized mouse event because radio labels are often covered by
// custom styling.
func (d *ChromeDriver) Activate(ctx context.Context, h models.Handle) error {
	c, done := d.scoped(ctx, 0)
	defer done()

	selector, err := json.Marshal(h.Selector)
	if err != nil {
		return fmt.Errorf("invalid selector %q: %w", h.Selector, err)
	}
	script := fmt.Sprintf(`(function() {
	const el = document.querySelectorAll(%s)[%d];
	if (!el) { return false; }
	el.click();
	return true;
})()`, selector, h.Index)

	var clicked bool
	if err := chromedp.Run(c, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("failed to click %q[%d]: %w", h.Selector, h.Index, err)
	}
	if !clicked {
		return fmt.Errorf("%q[%d]: %w", h.Selector, h.Index, ErrElementNotFound)
	}

	log.Debug().Str("selector", h.Selector).Int("index", h.Index).Msg("Clicked element")
	return nil
}

// Close closes the tab.
func (d *ChromeDriver) Close() {
	d.cancel()
}

// Cookies returns every cookie the browser holds for the tab.
func (d *ChromeDriver) Cookies(ctx context.Context) ([]*network.Cookie, error) {
	c, done := d.scoped(ctx, 0)
	defer done()

	var cookies []*network.Cookie
	err := chromedp.Run(c, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return cookies, nil
}
