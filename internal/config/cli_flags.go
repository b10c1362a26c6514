package config

import (
	"github.com/spf13/cobra"
)

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (default $XDG_CONFIG_HOME/tablecrawl/config.yaml)")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().Duration("timeout", DefaultElementTimeout, "Bound on every element wait")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome/Chromium executable")
	cmd.PersistentFlags().String("remote", "", "Attach to a running Chrome (DevTools URL) instead of launching one")
	cmd.PersistentFlags().String("frame", "", "CSS selector of an iframe that hosts the table")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window")
}

// RegisterOutputFlags registers the flags shared by commands that write CSV.
func RegisterOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output-dir", "o", DefaultOutputDir, "Directory for the CSV files (- streams them to stdout)")
	f.String("key-column", DefaultKeyColumn, "Header of the column used for deduplication")
	f.Bool("bom", false, "Prefix files with a UTF-8 byte order mark")
	f.Bool("crlf", false, "Use \\r\\n line endings")
}

// RegisterExtractFlags registers the flags of the extract command.
func RegisterExtractFlags(cmd *cobra.Command) {
	RegisterOutputFlags(cmd)
	f := cmd.Flags()
	f.StringP("label", "l", DefaultLabel, "Filename prefix")
	f.String("key-delimiter", DefaultKeyDelimiter, "Joins cells when a row has no key value")
	f.Duration("page-delay", DefaultPageDelay, "Pause after switching pages")
	f.Duration("filter-delay", DefaultFilterDelay, "Pause after selecting a filter")
	f.String("settle", DefaultSettleMode, "How to wait after a click: sleep or loading")
	f.Float64("rate", DefaultActionRPS, "Maximum clicks per second (0 = unlimited)")
}
