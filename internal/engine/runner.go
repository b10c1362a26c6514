package engine

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/driver"
	"github.com/law-makers/tablecrawl/internal/reqctx"
	"github.com/law-makers/tablecrawl/pkg/models"
)

// Runner walks the cross product of two filter dimensions, one combination at
// a time, and feeds every table into a single accumulator.
type Runner struct {
	Driver      driver.PageDriver
	Extractor   *Extractor
	Dedup       *dedup.Deduplicator
	FilterDelay time.Duration
	Settler     Settler

	// OnStart is called once with the number of combinations.
	OnStart func(total int)
	// OnCombination is called after every combination, skipped ones included.
	OnCombination func(models.CombinationResult)
}

// Run processes primary x secondary with primary as the outer loop. On a
// fatal error the accumulator built so far is returned alongside the error.
func (r *Runner) Run(ctx context.Context, primary, secondary []models.FilterOption) (*dedup.Accumulator, error) {
	acc := dedup.NewAccumulator(r.Dedup)
	settler := r.Settler
	if settler == nil {
		settler = SleepSettler{}
	}
	if r.OnStart != nil {
		r.OnStart(len(primary) * len(secondary))
	}

	for _, p := range primary {
		if err := r.apply(ctx, settler, p); err != nil {
			return acc, err
		}
		for _, s := range secondary {
			if err := ctx.Err(); err != nil {
				return acc, classify(ctx, "running combinations", "", err)
			}
			res, err := r.combination(ctx, settler, acc, p, s)
			r.report(res)
			if err != nil {
				return acc, err
			}
		}
	}

	reqctx.Logger(ctx).Info().
		Int("raw", len(acc.Raw)).
		Int("kept", len(acc.Kept)).
		Int("duplicates", acc.Duplicates).
		Msg("All combinations processed")
	return acc, nil
}

func (r *Runner) apply(ctx context.Context, settler Settler, opt models.FilterOption) error {
	if err := r.Driver.Activate(ctx, opt.Handle); err != nil {
		return classify(ctx, "selecting filter "+opt.Label, opt.Handle.Selector, err)
	}
	if err := settler.Settle(ctx, r.FilterDelay); err != nil {
		return classify(ctx, "waiting after filter "+opt.Label, "", err)
	}
	return nil
}

func (r *Runner) combination(ctx context.Context, settler Settler, acc *dedup.Accumulator, p, s models.FilterOption) (models.CombinationResult, error) {
	start := time.Now()
	res := models.CombinationResult{Primary: p, Secondary: s}
	logger := reqctx.Logger(ctx).With().Str("primary", p.Label).Str("secondary", s.Label).Logger()

	if err := r.apply(ctx, settler, s); err != nil {
		res.Skipped, res.Reason = true, err.Error()
		res.Elapsed = time.Since(start)
		return res, err
	}

	ext, err := r.Extractor.ExtractAll(ctx)
	if ext != nil {
		res.Pages = ext.Pages
	}
	if err != nil && !IsFatal(err) {
		logger.Warn().Err(err).Msg("Skipping combination")
		res.Skipped, res.Reason = true, err.Error()
		res.Elapsed = time.Since(start)
		return res, nil
	}

	if ext != nil && len(ext.Rows) > 0 {
		if len(acc.Headers) > 0 && !slices.Equal(acc.Headers, ext.Headers) {
			mismatch := NewError(ErrCodeHeaderMismatch, "headers differ from the first table", nil)
			logger.Warn().Strs("want", acc.Headers).Strs("got", ext.Headers).Msg("Skipping combination")
			res.Skipped, res.Reason = true, mismatch.Error()
			res.Elapsed = time.Since(start)
			if err != nil {
				return res, err
			}
			return res, nil
		}
		res.Extracted = len(ext.Rows)
		res.Kept, res.Duplicates = acc.Add(ext.Headers, ext.Rows)
	}
	res.Elapsed = time.Since(start)

	if err != nil {
		// Rows read before the failure are kept for a partial export.
		logger.Error().Err(err).Int("rows", res.Extracted).Msg("Combination aborted")
		res.Reason = err.Error()
		return res, err
	}
	if res.Extracted == 0 {
		res.Skipped, res.Reason = true, "no rows"
	}
	logger.Info().
		Int("pages", res.Pages).
		Int("rows", res.Extracted).
		Int("new", res.Kept).
		Int("duplicates", res.Duplicates).
		Dur("elapsed", res.Elapsed).
		Msg("Combination done")
	return res, nil
}

func (r *Runner) report(res models.CombinationResult) {
	if r.OnCombination != nil {
		r.OnCombination(res)
	}
}

// Partial reports whether err interrupted a run that still has data worth
// exporting.
func Partial(acc *dedup.Accumulator, err error) bool {
	if err == nil || acc == nil || acc.Empty() {
		return false
	}
	return errors.Is(err, ErrCancelled) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrDriver)
}
