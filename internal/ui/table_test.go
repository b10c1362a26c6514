package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/law-makers/tablecrawl/pkg/models"
)

func TestOptionsTable(t *testing.T) {
	var buf bytes.Buffer
	OptionsTable(&buf, []models.FilterOption{
		{Position: 0, Label: "在售", Value: "1"},
		{Position: 1, Label: "已售", Value: "2"},
	})
	out := buf.String()
	for _, want := range []string{"在售", "已售", " 2 "} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	SummaryTable(&buf, []models.CombinationResult{
		{Primary: models.FilterOption{Label: "P"}, Secondary: models.FilterOption{Label: "A"}, Extracted: 3, Kept: 2, Duplicates: 1},
		{Primary: models.FilterOption{Label: "P"}, Secondary: models.FilterOption{Label: "B"}, Skipped: true},
	})
	out := buf.String()
	if !strings.Contains(out, "skipped") {
		t.Errorf("expected skipped status in output:\n%s", out)
	}
	if !strings.Contains(strings.ToUpper(out), "TOTAL") {
		t.Errorf("expected total footer in output:\n%s", out)
	}
}

func TestProgress_Quiet(t *testing.T) {
	p := NewProgress(nil, 3, false)
	p.Done(models.CombinationResult{})
	p.Finish()

	var buf bytes.Buffer
	p = NewProgress(&buf, 2, false)
	p.Done(models.CombinationResult{Primary: models.FilterOption{Label: "P"}})
	p.Finish()
}
