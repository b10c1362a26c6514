package dedup

import (
	"github.com/law-makers/tablecrawl/pkg/models"
)

// Accumulator holds everything a run has extracted. It is owned by a single
// runner and is not safe for concurrent use.
type Accumulator struct {
	Headers    []string
	Raw        []models.Row
	Kept       []models.Row
	Duplicates int

	dedup *Deduplicator
	seen  KeySet
}

// NewAccumulator returns an empty accumulator using d for keys.
func NewAccumulator(d *Deduplicator) *Accumulator {
	return &Accumulator{dedup: d, seen: KeySet{}}
}

// Add appends rows to the raw set and the new ones to the kept set. The first
// non-empty headers seen become the run's headers. It returns how many rows
// were kept and how many were duplicates.
func (a *Accumulator) Add(headers []string, rows []models.Row) (kept, dups int) {
	if len(a.Headers) == 0 && len(headers) > 0 {
		a.Headers = append([]string(nil), headers...)
	}
	for _, row := range rows {
		a.Raw = append(a.Raw, row)
		key := a.dedup.KeyFor(row, a.Headers)
		if a.dedup.IsDuplicate(key, a.seen) {
			a.Duplicates++
			dups++
			continue
		}
		a.dedup.Record(key, a.seen)
		a.Kept = append(a.Kept, row)
		kept++
	}
	return kept, dups
}

// Empty reports whether no rows were accumulated.
func (a *Accumulator) Empty() bool { return len(a.Raw) == 0 }

// RawPayload returns every extracted row.
func (a *Accumulator) RawPayload() models.TablePayload {
	return models.TablePayload{Headers: a.Headers, Rows: a.Raw}
}

// KeptPayload returns the first-seen rows only.
func (a *Accumulator) KeptPayload() models.TablePayload {
	return models.TablePayload{Headers: a.Headers, Rows: a.Kept}
}
