package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/nao1215/markdown"
)

// Report summarises a run for the markdown report.
type Report struct {
	URL          string
	Label        string
	Started      time.Time
	Elapsed      time.Duration
	Combinations []models.CombinationResult
	Raw          int
	Kept         int
	Duplicates   int
	Files        Files
	// Err is the error that ended the run early, if any.
	Err error
}

// WriteReport renders r as markdown.
func WriteReport(w io.Writer, r Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("Extraction report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + r.URL + "`"},
			{"Label", r.Label},
			{"Started", r.Started.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", r.Elapsed.Round(time.Second).String()},
			{"Raw rows", strconv.Itoa(r.Raw)},
			{"Deduplicated rows", strconv.Itoa(r.Kept)},
			{"Duplicates", strconv.Itoa(r.Duplicates)},
		},
	})
	md.PlainText("")

	switch {
	case r.Err != nil && r.Raw > 0:
		md.Warningf("Run stopped early (%v). The files hold partial data.", r.Err)
	case r.Err != nil:
		md.Cautionf("Run failed: %v", r.Err)
	case r.Raw == 0:
		md.Note("No rows were extracted; no files were written.")
	default:
		md.Tip("All combinations processed.")
	}
	md.PlainText("")

	md.H2("Combinations")
	md.PlainText("")
	rows := make([][]string, 0, len(r.Combinations))
	for _, c := range r.Combinations {
		status := "ok"
		if c.Skipped {
			status = "skipped: " + c.Reason
		} else if c.Reason != "" {
			status = "aborted: " + c.Reason
		}
		rows = append(rows, []string{
			c.Primary.Label,
			c.Secondary.Label,
			strconv.Itoa(c.Pages),
			strconv.Itoa(c.Extracted),
			strconv.Itoa(c.Kept),
			strconv.Itoa(c.Duplicates),
			status,
		})
	}
	if len(rows) == 0 {
		md.PlainText("No combination was processed.")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"Primary", "Secondary", "Pages", "Rows", "New", "Duplicates", "Status"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if r.Files.Raw != "" {
		md.H2("Files")
		md.PlainText("")
		files := []string{"`" + r.Files.Raw + "`"}
		if r.Files.Dedup != "" {
			files = append(files, "`"+r.Files.Dedup+"`")
		}
		md.BulletList(files...)
		md.PlainText("")
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
