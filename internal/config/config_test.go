package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	RegisterExtractFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.ElementTimeout)
	assert.Equal(t, 2*time.Second, cfg.PageDelay)
	assert.Equal(t, 5*time.Second, cfg.FilterDelay)
	assert.Equal(t, "|", cfg.KeyDelimiter)
	assert.Equal(t, SettleSleep, cfg.SettleMode)
	assert.True(t, cfg.BrowserHeadless)
	assert.Equal(t, ".el-radio-group", cfg.Selectors.FilterGroup)
}

func TestLoad_FileEnvFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
element_timeout: 30s
page_delay: 1s
label: houses
key_column: id
selectors:
  filter_group: "#status"
`), 0o644))

	t.Setenv("TABLECRAWL_PAGE_DELAY", "3s")
	t.Setenv("TABLECRAWL_HEADLESS", "false")

	cfg, err := Load(newCmd(t, "--config", path, "--label", "flats", "--bom", "-v"))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 30*time.Second, cfg.ElementTimeout)
	assert.Equal(t, 3*time.Second, cfg.PageDelay, "env beats file")
	assert.Equal(t, "flats", cfg.Label, "flag beats file")
	assert.Equal(t, "id", cfg.KeyColumn)
	assert.True(t, cfg.BOM)
	assert.False(t, cfg.BrowserHeadless)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "#status", cfg.Selectors.FilterGroup)
	assert.Equal(t, ".el-table__body", cfg.Selectors.BodyRegion)
}

func TestLoad_SelectorsOff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
selectors:
  pagination: none
  empty_row: none
  loading_mask: ""
`), 0o644))

	cfg, err := Load(newCmd(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Selectors.Pagination)
	assert.Equal(t, "none", cfg.Selectors.EmptyRow)
	assert.Equal(t, ".el-loading-mask", cfg.Selectors.LoadingMask, "empty falls back to the default")
	assert.Equal(t, ".el-table__body tr", cfg.Selectors.RowWait())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(newCmd(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.ElementTimeout = 0 }},
		{"negative delay", func(c *Config) { c.PageDelay = -time.Second }},
		{"bad settle", func(c *Config) { c.SettleMode = "poll" }},
		{"digit delimiter", func(c *Config) { c.KeyDelimiter = "1" }},
		{"empty delimiter", func(c *Config) { c.KeyDelimiter = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
	assert.NoError(t, validate(Default()))
}
