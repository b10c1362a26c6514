// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/law-makers/tablecrawl/internal/auth"
	"github.com/law-makers/tablecrawl/internal/config"
	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/internal/output"
	"github.com/law-makers/tablecrawl/internal/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command. Chrome is only started when a command
// opens a page. Use Close() to shut the browser down.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Limiter  *ratelimit.ActionLimiter
	Sessions *auth.Store

	browserMu sync.Mutex
	browser   *driver.Browser
	startTime time.Time
}

// New creates and initializes a new Application with all dependencies.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg, os.Stderr)
	log.Logger = logger

	limiter := ratelimit.NewActionLimiter(cfg.ActionRPS, cfg.ActionBurst)
	logger.Debug().
		Float64("action_rps", cfg.ActionRPS).
		Int("action_burst", cfg.ActionBurst).
		Bool("unlimited", limiter.Unlimited()).
		Msg("Action limiter initialized")

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Limiter:   limiter,
		Sessions:  auth.NewStore(filepath.Join(config.XDGDataDir(), "sessions")),
		startTime: time.Now(),
	}

	logger.Debug().Str("config", cfg.Source).Msg("Application initialized")
	return app, nil
}

// NewLogger builds the global logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Browser returns the shared browser, creating its allocator on first use.
func (a *Application) Browser() *driver.Browser {
	a.browserMu.Lock()
	defer a.browserMu.Unlock()
	if a.browser == nil {
		a.browser = driver.NewBrowser(a.browserOptions(a.Config.BrowserHeadless))
	}
	return a.browser
}

// VisibleBrowser returns a separate, non-headless browser for interactive
// login. The caller closes it.
func (a *Application) VisibleBrowser() *driver.Browser {
	return driver.NewBrowser(a.browserOptions(false))
}

func (a *Application) browserOptions(headless bool) driver.BrowserOptions {
	return driver.BrowserOptions{
		Headless:   headless,
		UserAgent:  a.Config.UserAgent,
		Proxy:      a.Config.Proxy,
		ChromePath: a.Config.ChromePath,
		RemoteURL:  a.Config.RemoteURL,
	}
}

// OpenPage opens url in a new tab, injecting the named session's cookies
// first when session is not empty.
func (a *Application) OpenPage(ctx context.Context, url, session string) (*driver.ChromeDriver, error) {
	opts := driver.OpenOptions{
		URL:     url,
		Frame:   a.Config.Frame,
		Timeout: a.Config.NavigationTimeout,
	}
	if session != "" {
		s, err := a.Sessions.Load(session)
		if err != nil {
			return nil, err
		}
		opts.Cookies = s.CookieParams()
		a.Logger.Debug().Str("session", session).Int("cookies", len(opts.Cookies)).Msg("Session loaded")
	}
	return a.Browser().Open(ctx, opts, a.Config.Selectors)
}

// Pipeline wires the extraction components around d.
func (a *Application) Pipeline(d driver.PageDriver) (*engine.FilterEnumerator, *engine.Runner, error) {
	cfg := a.Config
	dd, err := dedup.New(cfg.KeyColumn, cfg.KeyDelimiter)
	if err != nil {
		return nil, nil, err
	}

	throttled := driver.Throttle(d, a.Limiter)
	settler := a.settler(throttled)

	filters := &engine.FilterEnumerator{
		Driver:  throttled,
		Group:   cfg.Selectors.FilterGroup,
		Timeout: cfg.ElementTimeout,
	}
	runner := &engine.Runner{
		Driver: throttled,
		Extractor: &engine.Extractor{
			Driver:    throttled,
			Selectors: cfg.Selectors,
			Timeout:   cfg.ElementTimeout,
			PageDelay: cfg.PageDelay,
			Settler:   settler,
		},
		Dedup:       dd,
		FilterDelay: cfg.FilterDelay,
		Settler:     settler,
	}
	return filters, runner, nil
}

func (a *Application) settler(d driver.PageDriver) engine.Settler {
	if a.Config.SettleMode != config.SettleLoading {
		return engine.SleepSettler{}
	}
	w, ok := d.(driver.AbsenceWaiter)
	if !ok {
		a.Logger.Warn().Msg("Driver cannot wait for the loading mask, falling back to fixed delays")
		return engine.SleepSettler{}
	}
	return engine.LoadingSettler{
		Waiter:   w,
		Selector: a.Config.Selectors.LoadingMask,
		Timeout:  a.Config.ElementTimeout,
	}
}

// ToStdout reports whether CSV files are streamed to stdout instead of
// written into the output directory.
func (a *Application) ToStdout() bool {
	return a.Config.OutputDir == config.StdoutDir
}

// Sink returns where CSV files go. stdout is only used when ToStdout.
func (a *Application) Sink(stdout io.Writer) output.Sink {
	if a.ToStdout() {
		return &output.WriterSink{W: stdout}
	}
	return output.FileSink{Dir: a.Config.OutputDir}
}

// Locate describes where a delivered file ended up.
func (a *Application) Locate(filename string) string {
	if a.ToStdout() {
		return filename + " (stdout)"
	}
	return output.FileSink{Dir: a.Config.OutputDir}.Path(filename)
}

// Exporter returns an exporter for the configured output settings.
func (a *Application) Exporter(stdout io.Writer) *output.Exporter {
	return &output.Exporter{
		Sink:  a.Sink(stdout),
		Label: a.Config.Label,
		Options: output.EncodeOptions{
			CRLF: a.Config.CRLF,
			BOM:  a.Config.BOM,
		},
	}
}

// Close gracefully shuts down the application and all its resources.
func (a *Application) Close(ctx context.Context) error {
	a.browserMu.Lock()
	defer a.browserMu.Unlock()
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
		a.browser = nil
	}
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
