// Package compare diffs two CSV exports by a key column.
package compare

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/law-makers/tablecrawl/pkg/models"
)

// ErrKeyColumn is returned when a table lacks the key column.
var ErrKeyColumn = errors.New("key column not found")

// Change is one field whose value differs between the two files.
type Change struct {
	Key    string
	Column string
	Old    string
	New    string
}

// Result holds the differences between an old and a new table.
type Result struct {
	OldHeaders []string
	NewHeaders []string
	OnlyOld    []models.Row
	OnlyNew    []models.Row
	Common     int
	// ChangedKeys counts keys present in both files with at least one change.
	ChangedKeys int
	Changes     []Change
}

// ReadFile loads a CSV export from disk.
func ReadFile(path string) (models.TablePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.TablePayload{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	p, err := Read(f)
	if err != nil {
		return models.TablePayload{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Read parses a CSV with a header line. A leading UTF-8 BOM is ignored.
func Read(r io.Reader) (models.TablePayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.TablePayload{}, fmt.Errorf("failed to read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return models.TablePayload{}, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return models.TablePayload{}, fmt.Errorf("csv has no header line")
	}

	p := models.TablePayload{Headers: records[0]}
	for _, rec := range records[1:] {
		p.Rows = append(p.Rows, models.Row(rec))
	}
	return p, nil
}

// Diff compares old and new by keyColumn. When a key repeats within a file
// its first row is used. Fields are matched by column name.
func Diff(old, new models.TablePayload, keyColumn string) (*Result, error) {
	oldIdx, err := index(old, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("old file: %w", err)
	}
	newIdx, err := index(new, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("new file: %w", err)
	}

	res := &Result{OldHeaders: old.Headers, NewHeaders: new.Headers}
	columns := unionColumns(old.Headers, new.Headers)

	for _, key := range oldIdx.order {
		oldRow := oldIdx.rows[key]
		newRow, ok := newIdx.rows[key]
		if !ok {
			res.OnlyOld = append(res.OnlyOld, oldRow)
			continue
		}
		res.Common++
		changed := false
		for _, col := range columns {
			ov := cell(old.Headers, oldRow, col)
			nv := cell(new.Headers, newRow, col)
			if ov != nv {
				res.Changes = append(res.Changes, Change{Key: key, Column: col, Old: ov, New: nv})
				changed = true
			}
		}
		if changed {
			res.ChangedKeys++
		}
	}
	for _, key := range newIdx.order {
		if _, ok := oldIdx.rows[key]; !ok {
			res.OnlyNew = append(res.OnlyNew, newIdx.rows[key])
		}
	}
	return res, nil
}

// ChangesPayload lays the changes out as a long table.
func (r *Result) ChangesPayload(keyColumn string) models.TablePayload {
	p := models.TablePayload{Headers: []string{keyColumn, "column", "old", "new"}}
	for _, c := range r.Changes {
		p.Rows = append(p.Rows, models.Row{c.Key, c.Column, c.Old, c.New})
	}
	return p
}

type keyIndex struct {
	order []string
	rows  map[string]models.Row
}

func index(p models.TablePayload, keyColumn string) (*keyIndex, error) {
	col := -1
	for i, h := range p.Headers {
		if strings.TrimSpace(h) == keyColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrKeyColumn, keyColumn)
	}

	idx := &keyIndex{rows: make(map[string]models.Row, len(p.Rows))}
	for _, row := range p.Rows {
		if col >= len(row) {
			continue
		}
		key := strings.TrimSpace(row[col])
		if _, seen := idx.rows[key]; seen {
			continue
		}
		idx.rows[key] = row
		idx.order = append(idx.order, key)
	}
	return idx, nil
}

func unionColumns(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, h := range append(append([]string(nil), a...), b...) {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

func cell(headers []string, row models.Row, column string) string {
	for i, h := range headers {
		if h == column {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}
