package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if c.ElementTimeout <= 0 || c.ElementTimeout > MaxElementTimeout {
		return fmt.Errorf("element timeout must be between 0 and %s", MaxElementTimeout)
	}
	if c.PageDelay < 0 || c.FilterDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	switch c.SettleMode {
	case SettleSleep, SettleLoading:
	default:
		return fmt.Errorf("settle mode must be %q or %q, got %q", SettleSleep, SettleLoading, c.SettleMode)
	}
	if c.KeyDelimiter == "" || strings.ContainsAny(c.KeyDelimiter, "0123456789") {
		return fmt.Errorf("key delimiter must be non-empty and contain no digits")
	}
	if c.ActionRPS < 0 {
		return fmt.Errorf("action rate must be >= 0")
	}
	if c.ActionBurst <= 0 {
		c.ActionBurst = 1
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
