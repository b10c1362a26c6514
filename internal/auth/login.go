// internal/auth/login.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures the interactive login behavior
type LoginOptions struct {
	// SessionName is the name to save the session as
	SessionName string
	// URL to navigate to for login
	URL string
	// WaitSelector, when set, marks login as complete once it appears
	// (e.g. the table's filter group). Otherwise Confirm is called.
	WaitSelector string
	// Timeout for the entire login process
	Timeout time.Duration
	// Confirm blocks until the user says login is done.
	Confirm func() error
}

// InteractiveLogin opens the page in a visible browser, waits for the user
// to log in and returns the captured cookies as a session.
func InteractiveLogin(ctx context.Context, browser *driver.Browser, opts LoginOptions) (*Session, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	log.Info().Str("session", opts.SessionName).Str("url", opts.URL).Msg("Starting interactive login")

	tab, err := browser.Open(ctx, driver.OpenOptions{URL: opts.URL, Timeout: opts.Timeout}, driver.DefaultSelectors())
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	switch {
	case opts.WaitSelector != "":
		log.Info().Str("selector", opts.WaitSelector).Msg("Waiting for login completion")
		if err := tab.WaitFor(ctx, opts.WaitSelector, opts.Timeout); err != nil {
			return nil, fmt.Errorf("login timeout or failed: %w", err)
		}
	case opts.Confirm != nil:
		if err := opts.Confirm(); err != nil {
			return nil, err
		}
	}

	cookies, err := tab.Cookies(ctx)
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found - login may have failed")
	}
	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies extracted")

	session := &Session{
		Name:      opts.SessionName,
		URL:       opts.URL,
		Cookies:   FromNetwork(cookies),
		CreatedAt: time.Now(),
	}
	session.latestExpiry()
	return session, nil
}
