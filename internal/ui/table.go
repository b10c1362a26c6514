package ui

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/law-makers/tablecrawl/pkg/models"
)

// OptionsTable lists filter options with the ordinals users type.
func OptionsTable(w io.Writer, options []models.FilterOption) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Label", "Value"})
	for _, o := range options {
		t.AppendRow(table.Row{o.Ordinal(), o.Label, o.Value})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// SummaryTable prints one line per combination and a total line.
func SummaryTable(w io.Writer, results []models.CombinationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Primary", "Secondary", "Pages", "Rows", "New", "Dup", "Status"})

	var rows, kept, dups int
	for _, r := range results {
		status := "ok"
		switch {
		case r.Skipped:
			status = "skipped"
		case r.Reason != "":
			status = "aborted"
		}
		t.AppendRow(table.Row{r.Primary.Label, r.Secondary.Label, r.Pages, r.Extracted, r.Kept, r.Duplicates, status})
		rows += r.Extracted
		kept += r.Kept
		dups += r.Duplicates
	}
	t.AppendFooter(table.Row{"", "Total", "", rows, kept, dups, strconv.Itoa(len(results))})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// KeyValueTable prints label/value pairs.
func KeyValueTable(w io.Writer, title string, pairs [][2]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if title != "" {
		t.SetTitle(title)
	}
	for _, p := range pairs {
		t.AppendRow(table.Row{p[0], p[1]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
