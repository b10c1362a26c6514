package output

import (
	"context"
	"strings"
	"time"

	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultLabel prefixes export filenames when no label is configured.
const DefaultLabel = "export"

// Exporter writes the raw and deduplicated files of a run.
type Exporter struct {
	Sink    Sink
	Label   string
	Options EncodeOptions
	// Now is used for the date in filenames; nil means time.Now.
	Now func() time.Time
}

// Files names what an export produced.
type Files struct {
	Raw   string
	Dedup string
}

// Filenames returns the raw and deduplicated filenames for the current date.
func (e *Exporter) Filenames() Files {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	date := now().Format("2006-01-02")
	label := sanitizeLabel(e.Label)
	return Files{
		Raw:   label + "_raw_" + date + ".csv",
		Dedup: label + "_dedup_" + date + ".csv",
	}
}

// Export delivers both files. Nothing is written for an empty accumulator.
// Sink failures are returned as engine.ErrSink and not retried.
func (e *Exporter) Export(ctx context.Context, acc *dedup.Accumulator) (Files, error) {
	if acc == nil || acc.Empty() {
		return Files{}, nil
	}
	files := e.Filenames()
	if err := e.deliver(ctx, files.Raw, acc.RawPayload()); err != nil {
		return Files{}, err
	}
	if err := e.deliver(ctx, files.Dedup, acc.KeptPayload()); err != nil {
		return Files{Raw: files.Raw}, err
	}
	log.Info().
		Str("raw", files.Raw).
		Str("dedup", files.Dedup).
		Int("raw_rows", len(acc.Raw)).
		Int("kept_rows", len(acc.Kept)).
		Msg("Export complete")
	return files, nil
}

func (e *Exporter) deliver(ctx context.Context, name string, p models.TablePayload) error {
	data, err := EncodeCSV(p, e.Options)
	if err != nil {
		return engine.NewError(engine.ErrCodeSink, "encoding "+name, err)
	}
	if err := e.Sink.Deliver(ctx, name, data); err != nil {
		return engine.NewError(engine.ErrCodeSink, "delivering "+name, err)
	}
	return nil
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultLabel
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, label)
}
