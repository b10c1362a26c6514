package engine

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Extraction is the result of reading every page of one combination.
type Extraction struct {
	models.TablePayload
	Pages int
}

// Extractor reads a paginated table through a PageDriver.
type Extractor struct {
	Driver    driver.PageDriver
	Selectors driver.Selectors
	// Timeout bounds every element wait.
	Timeout time.Duration
	// PageDelay is the settle delay after clicking next.
	PageDelay time.Duration
	Settler   Settler
}

// ExtractAll reads headers once, then rows page by page until the table runs
// out of rows, the next button is gone or disabled, or a page repeats.
func (e *Extractor) ExtractAll(ctx context.Context) (*Extraction, error) {
	sel := e.Selectors
	if err := e.Driver.WaitFor(ctx, sel.HeaderRegion, e.Timeout); err != nil {
		return nil, classify(ctx, "waiting for table header", sel.HeaderRegion, err)
	}
	if driver.Enabled(sel.Pagination) {
		p := strings.TrimSpace(sel.Pagination)
		if err := e.Driver.WaitFor(ctx, p, e.Timeout); err != nil {
			return nil, classify(ctx, "waiting for pagination", p, err)
		}
	}

	raw, err := e.Driver.ReadHeaders(ctx)
	if err != nil {
		return nil, classify(ctx, "reading headers", sel.HeaderRegion, err)
	}
	headers := cleanHeaders(raw)
	if len(headers) == 0 {
		return nil, NewError(ErrCodeNoHeaders, "table has no headers", nil).WithSelector(sel.HeaderRegion)
	}

	out := &Extraction{TablePayload: models.TablePayload{Headers: headers}}
	var previous []models.Row
	settler := e.settler()

	for {
		rowSel := sel.RowWait()
		if err := e.Driver.WaitFor(ctx, rowSel, e.Timeout); err != nil {
			return out, classify(ctx, "waiting for rows", rowSel, err)
		}
		cells, err := e.Driver.ReadRows(ctx, len(headers))
		if err != nil {
			return out, classify(ctx, "reading rows", sel.BodyRegion, err)
		}
		rows := cleanRows(cells, len(headers))
		if len(rows) == 0 {
			log.Debug().Int("page", out.Pages+1).Msg("Page has no rows, stopping")
			break
		}
		if previous != nil && samePage(previous, rows) {
			log.Warn().Int("page", out.Pages+1).Msg("Page repeats the previous one, stopping")
			break
		}

		out.Pages++
		out.Rows = append(out.Rows, rows...)
		previous = rows
		log.Debug().Int("page", out.Pages).Int("rows", len(rows)).Msg("Page extracted")

		next, ok, err := e.Driver.FindNext(ctx)
		if err != nil {
			return out, classify(ctx, "locating next page", "", err)
		}
		if !ok {
			break
		}
		disabled, err := e.Driver.IsNextDisabled(ctx, next)
		if err != nil {
			return out, classify(ctx, "checking next page", next.Selector, err)
		}
		if disabled {
			break
		}
		if err := e.Driver.Activate(ctx, next); err != nil {
			return out, classify(ctx, "clicking next page", next.Selector, err)
		}
		if err := settler.Settle(ctx, e.PageDelay); err != nil {
			return out, classify(ctx, "waiting for next page", "", err)
		}
	}
	return out, nil
}

func (e *Extractor) settler() Settler {
	if e.Settler == nil {
		return SleepSettler{}
	}
	return e.Settler
}

func cleanHeaders(raw []string) []string {
	headers := make([]string, 0, len(raw))
	for _, h := range raw {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// cleanRows trims cells and keeps rows with exactly n cells, not all empty.
func cleanRows(raw []models.Row, n int) []models.Row {
	rows := make([]models.Row, 0, len(raw))
	for _, r := range raw {
		if len(r) > n {
			r = r[:n]
		}
		if len(r) != n {
			continue
		}
		row := make(models.Row, n)
		empty := true
		for i, c := range r {
			row[i] = strings.TrimSpace(c)
			if row[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

func samePage(a, b []models.Row) bool {
	return slices.EqualFunc(a, b, func(x, y models.Row) bool { return slices.Equal(x, y) })
}
