package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Timing
	ElementTimeout    time.Duration `yaml:"element_timeout"`
	PageDelay         time.Duration `yaml:"page_delay"`
	FilterDelay       time.Duration `yaml:"filter_delay"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleMode        string        `yaml:"settle_mode"`

	// Deduplication
	KeyColumn    string `yaml:"key_column"`
	KeyDelimiter string `yaml:"key_delimiter"`

	// Output
	OutputDir string `yaml:"output_dir"`
	Label     string `yaml:"label"`
	BOM       bool   `yaml:"bom"`
	CRLF      bool   `yaml:"crlf"`

	// Browser
	BrowserHeadless bool   `yaml:"headless"`
	ChromePath      string `yaml:"chrome_path"`
	UserAgent       string `yaml:"user_agent"`
	Proxy           string `yaml:"proxy"`
	RemoteURL       string `yaml:"remote_url"`
	Frame           string `yaml:"frame"`

	// Rate limiting of clicks
	ActionRPS   float64 `yaml:"action_rps"`
	ActionBurst int     `yaml:"action_burst"`

	Selectors driver.Selectors `yaml:"selectors"`

	// Source is the config file that was loaded, if any.
	Source string `yaml:"-"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		ElementTimeout:    DefaultElementTimeout,
		PageDelay:         DefaultPageDelay,
		FilterDelay:       DefaultFilterDelay,
		NavigationTimeout: DefaultNavigationTimeout,
		SettleMode:        DefaultSettleMode,
		KeyColumn:         DefaultKeyColumn,
		KeyDelimiter:      DefaultKeyDelimiter,
		OutputDir:         DefaultOutputDir,
		Label:             DefaultLabel,
		BrowserHeadless:   DefaultBrowserHeadless,
		UserAgent:         DefaultUserAgent,
		ActionRPS:         DefaultActionRPS,
		ActionBurst:       DefaultActionBurst,
		Selectors:         driver.DefaultSelectors(),
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	explicit := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if path := FindConfigFile(explicit); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	} else if explicit != "" {
		return nil, fmt.Errorf("config file %s: %w", explicit, ErrConfigNotFound)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	cfg.Selectors = cfg.Selectors.Merge(driver.DefaultSelectors())

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides from TABLECRAWL_* environment variables.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"TABLECRAWL_USER_AGENT":    &c.UserAgent,
		"TABLECRAWL_PROXY":         &c.Proxy,
		"TABLECRAWL_CHROME_PATH":   &c.ChromePath,
		"TABLECRAWL_REMOTE_URL":    &c.RemoteURL,
		"TABLECRAWL_OUTPUT_DIR":    &c.OutputDir,
		"TABLECRAWL_KEY_COLUMN":    &c.KeyColumn,
		"TABLECRAWL_KEY_DELIMITER": &c.KeyDelimiter,
		"TABLECRAWL_LABEL":         &c.Label,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"TABLECRAWL_ELEMENT_TIMEOUT": &c.ElementTimeout,
		"TABLECRAWL_PAGE_DELAY":      &c.PageDelay,
		"TABLECRAWL_FILTER_DELAY":    &c.FilterDelay,
	}
	for name, dst := range durs {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("TABLECRAWL_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TABLECRAWL_HEADLESS: %w", err)
		}
		c.BrowserHeadless = b
	}
	return nil
}

// applyFlags overrides with flags the user actually set.
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	strs := map[string]*string{
		"user-agent":    &c.UserAgent,
		"proxy":         &c.Proxy,
		"chrome-path":   &c.ChromePath,
		"remote":        &c.RemoteURL,
		"frame":         &c.Frame,
		"output-dir":    &c.OutputDir,
		"label":         &c.Label,
		"key-column":    &c.KeyColumn,
		"key-delimiter": &c.KeyDelimiter,
		"settle":        &c.SettleMode,
	}
	for name, dst := range strs {
		if changed(name) {
			v, err := flags.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"timeout":      &c.ElementTimeout,
		"page-delay":   &c.PageDelay,
		"filter-delay": &c.FilterDelay,
	}
	for name, dst := range durs {
		if changed(name) {
			v, err := flags.GetDuration(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	bools := map[string]*bool{
		"json": &c.JSONLog,
		"bom":  &c.BOM,
		"crlf": &c.CRLF,
	}
	for name, dst := range bools {
		if changed(name) {
			v, err := flags.GetBool(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	if changed("headful") {
		v, err := flags.GetBool("headful")
		if err != nil {
			return err
		}
		c.BrowserHeadless = !v
	}
	if changed("rate") {
		v, err := flags.GetFloat64("rate")
		if err != nil {
			return err
		}
		c.ActionRPS = v
	}

	if v, _ := flags.GetBool("verbose"); v {
		c.LogLevel = "debug"
	}
	if v, _ := flags.GetBool("quiet"); v {
		c.LogLevel = "error"
	}
	return nil
}
