// internal/cli/filters.go
package cli

import (
	"fmt"

	"github.com/law-makers/tablecrawl/internal/reqctx"
	"github.com/law-makers/tablecrawl/internal/ui"
	"github.com/spf13/cobra"
)

var filtersSession string

// filtersCmd represents the filters command
var filtersCmd = &cobra.Command{
	Use:   "filters <url>",
	Short: "List the filter options a page offers",
	Long: `Opens the page and prints every radio filter option with the ordinal that
extract's --primary and --secondary flags expect.`,
	Example: `  $ tablecrawl filters https://example.com/houses
  $ tablecrawl filters https://example.com/portal --session work --frame "#mainFrame"`,
	Args: cobra.ExactArgs(1),
	RunE: runFilters,
}

func init() {
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.Flags().StringVar(&filtersSession, "session", "", "Name of a saved login session to use")
}

func runFilters(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	ctx := reqctx.WithRun(cmd.Context())

	page, err := a.OpenPage(ctx, args[0], filtersSession)
	if err != nil {
		return err
	}
	defer page.Close()

	filters, _, err := a.Pipeline(page)
	if err != nil {
		return err
	}
	options, err := filters.Discover(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	ui.OptionsTable(out, options)
	return nil
}
