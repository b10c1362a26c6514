package driver

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// BrowserOptions configures how Chrome is started or reached.
type BrowserOptions struct {
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
	// RemoteURL attaches to an already running Chrome started with
	// --remote-debugging-port (e.g. ws://127.0.0.1:9222/devtools/browser/<id>
	// or http://127.0.0.1:9222). The local launch options are ignored then.
	RemoteURL string
	ExtraArgs []chromedp.ExecAllocatorOption
}

// OpenOptions describes the page to open.
type OpenOptions struct {
	URL     string
	Cookies []*network.CookieParam
	// Frame, when set, is an iframe selector whose src is opened instead of
	// the outer page.
	Frame   string
	Timeout time.Duration
}

// Browser owns one Chrome allocator. Tabs are opened with Open.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	remote      bool
	mu          sync.Mutex
	closed      bool
}

// NewBrowser prepares an allocator. Chrome itself starts with the first tab.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.RemoteURL != "" {
		allocCtx, cancel := chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
		log.Debug().Str("remote", opts.RemoteURL).Msg("Using remote Chrome")
		return &Browser{allocCtx: allocCtx, allocCancel: cancel, remote: true}
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		// Element UI collapses pagination on narrow viewports.
		chromedp.Flag("window-size", "1920,1080"),
	}
	if path := FindChrome(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	allocOpts = append(allocOpts, opts.ExtraArgs...)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	log.Debug().Bool("headless", opts.Headless).Msg("Chrome allocator created")
	return &Browser{allocCtx: allocCtx, allocCancel: cancel}
}

// Open creates a tab, navigates to opts.URL and returns a driver bound to it.
// Cancelling ctx aborts navigation but does not close the tab; use
// ChromeDriver.Close for that.
func (b *Browser) Open(ctx context.Context, opts OpenOptions, sel Selectors) (*ChromeDriver, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("browser is closed")
	}
	b.mu.Unlock()

	if opts.URL == "" {
		return nil, fmt.Errorf("page URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	tab, tabCancel := chromedp.NewContext(b.allocCtx)
	d := &ChromeDriver{tab: tab, cancel: tabCancel, sel: sel}

	navCtx, done := d.scoped(ctx, opts.Timeout)
	defer done()

	start := time.Now()
	tasks := chromedp.Tasks{network.Enable()}
	if len(opts.Cookies) > 0 {
		tasks = append(tasks, network.SetCookies(opts.Cookies))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err := chromedp.Run(navCtx, tasks); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to open %s: %w", opts.URL, err)
	}

	if opts.Frame != "" {
		if err := d.enterFrame(navCtx, opts.Frame); err != nil {
			tabCancel()
			return nil, err
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("cookies", len(opts.Cookies)).
		Dur("elapsed", time.Since(start)).
		Msg("Page opened")
	return d, nil
}

// enterFrame navigates the tab to the iframe's document so the table can be
// queried directly.
func (d *ChromeDriver) enterFrame(ctx context.Context, frame string) error {
	var (
		src      string
		ok       bool
		location string
	)
	err := chromedp.Run(ctx,
		chromedp.WaitReady(frame, chromedp.ByQuery),
		chromedp.AttributeValue(frame, "src", &src, &ok, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return fmt.Errorf("failed to locate frame %q: %w", frame, err)
	}
	if !ok || src == "" {
		return fmt.Errorf("frame %q has no src attribute", frame)
	}

	target, err := resolveFrameURL(location, src)
	if err != nil {
		return err
	}
	log.Debug().Str("frame", frame).Str("src", target).Msg("Following frame")

	if err := chromedp.Run(ctx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to open frame document %s: %w", target, err)
	}
	return nil
}

func resolveFrameURL(base, src string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid page location %q: %w", base, err)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid frame src %q: %w", src, err)
	}
	return b.ResolveReference(ref).String(), nil
}

// Close shuts the allocator down. A remote browser is only detached from.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.allocCancel()
	log.Debug().Bool("remote", b.remote).Msg("Browser closed")
	return nil
}
