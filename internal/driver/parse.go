package driver

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/tablecrawl/pkg/models"
)

// The chromedp driver snapshots the live DOM as HTML and reads it with
// goquery, so everything below works the same on a fixture file.

// ParseDocument parses an HTML snapshot.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}
	return doc, nil
}

// cellText mirrors how the table renders text: prefer the inner .cell wrapper
// when there is one, otherwise the element's own text content.
func cellText(s *goquery.Selection, inner string) string {
	if inner != "" {
		if c := s.Find(inner).First(); c.Length() > 0 {
			return strings.TrimSpace(c.Text())
		}
	}
	return strings.TrimSpace(s.Text())
}

// ParseHeaders returns the non-empty header texts of the first header region.
func ParseHeaders(doc *goquery.Document, sel Selectors) []string {
	var headers []string
	doc.Find(sel.HeaderRegion).First().Find(sel.HeaderCell).Each(func(_ int, th *goquery.Selection) {
		if text := cellText(th, sel.CellInner); text != "" {
			headers = append(headers, text)
		}
	})
	return headers
}

// ParseRows returns the rows of the first body region, each cut to headerCount
// cells. Rows are not filtered here beyond skipping the empty-table marker.
func ParseRows(doc *goquery.Document, sel Selectors, headerCount int) []models.Row {
	rows := doc.Find(sel.BodyRegion).First().Find(sel.DataRow)
	if Enabled(sel.EmptyRow) {
		rows = rows.Not(sel.EmptyRow)
	}

	out := make([]models.Row, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		n := tds.Length()
		if headerCount > 0 && n > headerCount {
			n = headerCount
		}
		row := make(models.Row, 0, n)
		tds.Slice(0, n).Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td, sel.CellInner))
		})
		out = append(out, row)
	})
	return out
}

// ParseOptions lists the filter items under group. Handles point at the
// "group item" selector so the live page can click the same element.
func ParseOptions(doc *goquery.Document, sel Selectors, group string) []models.FilterOption {
	itemSelector := strings.TrimSpace(group + " " + sel.FilterItem)

	var options []models.FilterOption
	doc.Find(itemSelector).Each(func(i int, item *goquery.Selection) {
		label := item.Text()
		if l := item.Find(sel.FilterLabel).First(); l.Length() > 0 {
			label = l.Text()
		}
		label = strings.TrimSpace(label)

		value := label
		if input := item.Find(sel.FilterValue).First(); input.Length() > 0 {
			if v, ok := input.Attr("value"); ok {
				value = v
			}
		}

		options = append(options, models.FilterOption{
			Position: i,
			Label:    label,
			Value:    value,
			Handle:   models.Handle{Selector: itemSelector, Index: i},
		})
	})
	return options
}

// ParseNext returns the first next-page candidate present in the document.
func ParseNext(doc *goquery.Document, sel Selectors) (models.Handle, bool) {
	for _, candidate := range sel.NextButton {
		if doc.Find(candidate).Length() > 0 {
			return models.Handle{Selector: candidate, Index: 0}, true
		}
	}
	return models.Handle{}, false
}

// ParseDisabled reports whether the element behind h is disabled or hidden.
// A candidate that matched an icon inside the button also inherits the
// button's state. A handle that no longer matches counts as disabled.
func ParseDisabled(doc *goquery.Document, h models.Handle) bool {
	el := doc.Find(h.Selector).Eq(h.Index)
	if el.Length() == 0 {
		return true
	}
	if isDisabled(el) {
		return true
	}
	if btn := el.Closest("button"); btn.Length() > 0 && isDisabled(btn) {
		return true
	}
	return false
}

func isDisabled(el *goquery.Selection) bool {
	if _, ok := el.Attr("disabled"); ok {
		return true
	}
	if el.HasClass("disabled") || el.HasClass("is-disabled") {
		return true
	}
	style, _ := el.Attr("style")
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(style, "display:none")
}
