package config

import "time"

// AppName names the config directory and keyring service.
const AppName = "tablecrawl"

// Default constants for application configuration
const (
	DefaultLogLevel          = "warn"
	DefaultJSONLog           = false
	DefaultUserAgent         = ""
	DefaultElementTimeout    = 15 * time.Second
	DefaultPageDelay         = 2 * time.Second
	DefaultFilterDelay       = 5 * time.Second
	DefaultNavigationTimeout = 60 * time.Second
	DefaultSettleMode        = SettleSleep
	DefaultKeyColumn         = "房源编码"
	DefaultKeyDelimiter      = "|"
	DefaultOutputDir         = "."
	DefaultLabel             = "export"
	DefaultBrowserHeadless   = true
	DefaultActionRPS         = 0 // unlimited
	DefaultActionBurst       = 1
	MaxElementTimeout        = 10 * time.Minute
)

// StdoutDir as the output directory streams the CSV files to stdout.
const StdoutDir = "-"

// Settle modes.
const (
	SettleSleep   = "sleep"
	SettleLoading = "loading"
)
