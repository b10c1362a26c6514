package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// FilterEnumerator discovers the filter options offered by the page.
type FilterEnumerator struct {
	Driver  driver.PageDriver
	Group   string
	Timeout time.Duration
}

// Discover waits for the filter group and lists its options in page order.
func (f *FilterEnumerator) Discover(ctx context.Context) ([]models.FilterOption, error) {
	if err := f.Driver.WaitFor(ctx, f.Group, f.Timeout); err != nil {
		return nil, classify(ctx, "waiting for filters", f.Group, err)
	}
	options, err := f.Driver.ListOptions(ctx, f.Group)
	if err != nil {
		return nil, classify(ctx, "listing filters", f.Group, err)
	}
	if len(options) == 0 {
		return nil, NewError(ErrCodeDiscovery, "no filter options found", nil).WithSelector(f.Group)
	}

	log.Debug().Int("count", len(options)).Str("group", f.Group).Msg("Filter options discovered")
	return options, nil
}

// Resolve maps a comma-separated list of 1-based ordinals onto options.
// Entries that are not integers or fall outside the list are dropped; order
// and repeats are kept.
func Resolve(selection string, options []models.FilterOption) ([]models.FilterOption, error) {
	var out []models.FilterOption
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			log.Debug().Str("entry", part).Msg("Ignoring non-numeric selection")
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(options) {
			log.Debug().Int("ordinal", n).Int("options", len(options)).Msg("Ignoring out-of-range selection")
			continue
		}
		out = append(out, options[idx])
	}
	if len(out) == 0 {
		return nil, NewError(ErrCodeEmptySelection, "selection "+strconv.Quote(selection)+" matches no option", nil)
	}
	return out, nil
}
