// internal/cli/compare.go
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/law-makers/tablecrawl/internal/compare"
	"github.com/law-makers/tablecrawl/internal/config"
	"github.com/law-makers/tablecrawl/internal/output"
	"github.com/law-makers/tablecrawl/internal/ui"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <old.csv> <new.csv>",
	Short: "Compare two exports by key and write the differences",
	Long: `Matches the rows of two CSV exports by the key column and writes three files
to the output directory:

- compare_only_old.csv   rows that disappeared
- compare_only_new.csv   rows that appeared
- compare_changes.csv    one line per changed field`,
	Example: `  $ tablecrawl compare export_dedup_2024-05-01.csv export_dedup_2024-05-08.csv
  $ tablecrawl compare old.csv new.csv --key-column id --output-dir diffs`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	config.RegisterOutputFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	key := a.Config.KeyColumn

	oldTable, err := compare.ReadFile(args[0])
	if err != nil {
		return err
	}
	newTable, err := compare.ReadFile(args[1])
	if err != nil {
		return err
	}
	res, err := compare.Diff(oldTable, newTable, key)
	if err != nil {
		return err
	}

	sink := a.Sink(cmd.OutOrStdout())
	opts := output.EncodeOptions{CRLF: a.Config.CRLF, BOM: a.Config.BOM}
	files := []struct {
		name    string
		payload models.TablePayload
	}{
		{"compare_only_old.csv", models.TablePayload{Headers: res.OldHeaders, Rows: res.OnlyOld}},
		{"compare_only_new.csv", models.TablePayload{Headers: res.NewHeaders, Rows: res.OnlyNew}},
		{"compare_changes.csv", res.ChangesPayload(key)},
	}
	var written []string
	for _, f := range files {
		data, err := output.EncodeCSV(f.payload, opts)
		if err != nil {
			return err
		}
		if err := sink.Deliver(context.Background(), f.name, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		written = append(written, a.Locate(f.name))
	}
	log.Debug().Strs("files", written).Msg("Comparison written")

	out := cmd.OutOrStdout()
	if a.ToStdout() {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintln(out)
	ui.KeyValueTable(out, "Comparison by "+key, [][2]string{
		{"Old rows", strconv.Itoa(len(oldTable.Rows))},
		{"New rows", strconv.Itoa(len(newTable.Rows))},
		{"Only in old", strconv.Itoa(len(res.OnlyOld))},
		{"Only in new", strconv.Itoa(len(res.OnlyNew))},
		{"In both", strconv.Itoa(res.Common)},
		{"Changed", strconv.Itoa(res.ChangedKeys)},
		{"Changed fields", strconv.Itoa(len(res.Changes))},
	})
	fmt.Fprintf(out, "%s wrote\n  %s\n\n", ui.Success("✓"), strings.Join(written, "\n  "))
	return nil
}
