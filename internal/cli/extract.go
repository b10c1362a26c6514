// internal/cli/extract.go
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/law-makers/tablecrawl/internal/config"
	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/internal/output"
	"github.com/law-makers/tablecrawl/internal/reqctx"
	"github.com/law-makers/tablecrawl/internal/ui"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/spf13/cobra"
)

var (
	primarySelection   string
	secondarySelection string
	sessionName        string
	reportPath         string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract every chosen filter combination into raw and deduplicated CSV",
	Long: `Opens the page, lists the filter options and walks every primary x secondary
pair you choose. Each pair is read page by page until the next button is disabled
or a page comes back empty. Rows are deduplicated by the key column (the first run
of digits in it) across the whole run.

Two files are written: <label>_raw_<date>.csv and <label>_dedup_<date>.csv.
On Ctrl-C or a timeout, whatever was read so far is still written.
With --output-dir - both files are streamed to stdout, raw first.`,
	Example: `  # Choose filters interactively
  $ tablecrawl extract https://example.com/houses

  # Non-interactive: filters 1 and 2 against filters 4, 5 and 6
  $ tablecrawl extract https://example.com/houses --primary 1,2 --secondary 4,5,6

  # Use a saved login, a table inside an iframe and Excel-friendly output
  $ tablecrawl extract https://example.com/portal --session work --frame "#mainFrame" --bom`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&primarySelection, "primary", "p", "", "Primary filter ordinals, comma separated (prompted when empty)")
	extractCmd.Flags().StringVarP(&secondarySelection, "secondary", "s", "", "Secondary filter ordinals, comma separated (prompted when empty)")
	extractCmd.Flags().StringVar(&sessionName, "session", "", "Name of a saved login session to use")
	extractCmd.Flags().StringVar(&reportPath, "report", "", "Also write a markdown run report to this path")
	config.RegisterExtractFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "file://") {
		return fmt.Errorf("invalid URL: must start with http://, https:// or file://")
	}

	ctx := reqctx.WithRun(cmd.Context())
	logger := reqctx.Logger(ctx)
	out := cmd.OutOrStdout()
	if a.ToStdout() {
		// stdout carries the CSV data.
		out = cmd.ErrOrStderr()
	}
	started := time.Now()

	page, err := a.OpenPage(ctx, url, sessionName)
	if err != nil {
		return err
	}
	defer page.Close()

	filters, runner, err := a.Pipeline(page)
	if err != nil {
		return err
	}

	options, err := filters.Discover(ctx)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if primarySelection == "" || secondarySelection == "" {
		fmt.Fprintf(out, "\n%s\n", ui.Bold("Filter options"))
		ui.OptionsTable(out, options)
	}
	primary, err := choose(in, out, "Primary filters (e.g. 1,2)", primarySelection, options)
	if err != nil {
		return err
	}
	secondary, err := choose(in, out, "Secondary filters (e.g. 3,4)", secondarySelection, options)
	if err != nil {
		return err
	}

	var results []models.CombinationResult
	quiet := a.Config.LogLevel == "error" || a.Config.JSONLog
	var progress *ui.Progress
	runner.OnStart = func(total int) {
		progress = ui.NewProgress(os.Stderr, total, quiet)
	}
	runner.OnCombination = func(res models.CombinationResult) {
		results = append(results, res)
		progress.Done(res)
	}

	logger.Info().Int("primary", len(primary)).Int("secondary", len(secondary)).Str("url", url).Msg("Starting extraction")
	acc, runErr := runner.Run(ctx, primary, secondary)
	progress.Finish()

	// Export even when the run was interrupted; ctx may already be cancelled.
	exportCtx := context.WithoutCancel(ctx)
	files, exportErr := a.Exporter(cmd.OutOrStdout()).Export(exportCtx, acc)

	fmt.Fprintln(out)
	if len(results) > 0 {
		ui.SummaryTable(out, results)
	}
	printOutcome(out, acc, files, a.Locate, a.Uptime(), runErr, exportErr)

	if reportPath != "" {
		err := writeReport(reportPath, output.Report{
			URL:          url,
			Label:        a.Config.Label,
			Started:      started,
			Elapsed:      time.Since(started),
			Combinations: results,
			Raw:          len(acc.Raw),
			Kept:         len(acc.Kept),
			Duplicates:   acc.Duplicates,
			Files:        files,
			Err:          errors.Join(runErr, exportErr),
		})
		if err != nil {
			logger.Warn().Err(err).Str("path", reportPath).Msg("Failed to write report")
		}
	}

	if runErr != nil {
		return reqctx.NewRunError(ctx, runErr)
	}
	return exportErr
}

// choose resolves selection, prompting on in when it is empty.
func choose(in *bufio.Reader, out io.Writer, label, selection string, options []models.FilterOption) ([]models.FilterOption, error) {
	if strings.TrimSpace(selection) == "" {
		fmt.Fprintf(out, "%s: ", ui.Bold(label))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return nil, fmt.Errorf("failed to read selection: %w", err)
		}
		selection = line
	}
	return engine.Resolve(strings.TrimSpace(selection), options)
}

// printOutcome reports what was written. locate maps a filename to where it
// was delivered.
func printOutcome(w io.Writer, acc *dedup.Accumulator, files output.Files, locate func(string) string, elapsed time.Duration, runErr, exportErr error) {
	switch {
	case exportErr != nil:
		fmt.Fprintf(w, "%s export failed: %v\n", ui.Error("✗"), exportErr)
		if files.Raw != "" {
			fmt.Fprintf(w, "  raw rows were written to %s\n", locate(files.Raw))
		}
	case acc.Empty():
		fmt.Fprintf(w, "%s no rows extracted, nothing written\n", ui.Warn("!"))
	default:
		if runErr != nil {
			fmt.Fprintf(w, "%s run stopped early, wrote partial data\n", ui.Warn("!"))
		}
		fmt.Fprintf(w, "%s %d rows, %d unique, %d duplicates in %s\n",
			ui.Success("✓"), len(acc.Raw), len(acc.Kept), acc.Duplicates, elapsed.Round(time.Second))
		fmt.Fprintf(w, "  %s\n  %s\n", locate(files.Raw), locate(files.Dedup))
	}
}

func writeReport(path string, r output.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteReport(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
