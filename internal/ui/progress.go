package ui

import (
	"io"
	"time"

	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/schollz/progressbar/v3"
)

// Progress shows how many combinations are done.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns a bar over total combinations written to w. A nil w
// or quiet hides it.
func NewProgress(w io.Writer, total int, quiet bool) *Progress {
	if w == nil || quiet || total <= 0 {
		return &Progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("combinations"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Done advances the bar by one combination.
func (p *Progress) Done(res models.CombinationResult) {
	if p == nil || p.bar == nil {
		return
	}
	p.bar.Describe(res.Label())
	_ = p.bar.Add(1)
}

// Finish clears the bar.
func (p *Progress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
