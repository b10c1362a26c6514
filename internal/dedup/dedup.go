// Package dedup decides which extracted rows are new for the current run.
package dedup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/law-makers/tablecrawl/pkg/models"
)

// DefaultDelimiter joins cells when a row has no usable key column.
const DefaultDelimiter = "|"

// ErrInvalidDelimiter is returned by New when the fallback delimiter could
// collide with key values.
var ErrInvalidDelimiter = errors.New("invalid key delimiter")

// Key identifies a real-world record.
type Key string

// KeySet is the set of keys seen so far.
type KeySet map[Key]struct{}

// Deduplicator derives keys from rows.
type Deduplicator struct {
	keyColumn string
	delimiter string
}

// New validates delimiter and returns a Deduplicator keyed on keyColumn. An
// empty keyColumn keys every row on its full contents.
func New(keyColumn, delimiter string) (*Deduplicator, error) {
	if delimiter == "" {
		return nil, fmt.Errorf("%w: must not be empty", ErrInvalidDelimiter)
	}
	if strings.ContainsAny(delimiter, "0123456789") {
		return nil, fmt.Errorf("%w: %q contains digits", ErrInvalidDelimiter, delimiter)
	}
	return &Deduplicator{keyColumn: strings.TrimSpace(keyColumn), delimiter: delimiter}, nil
}

// KeyColumn returns the configured key column name.
func (d *Deduplicator) KeyColumn() string { return d.keyColumn }

// rowKeyPrefix marks keys built from whole rows so they never equal a key
// taken from the key column.
const rowKeyPrefix = "\x00row:"

// KeyFor derives the key of row. When the key column exists and holds a
// value, the key is its first run of digits (or the value itself when it has
// none). Otherwise all cells are joined with the delimiter behind rowKeyPrefix.
func (d *Deduplicator) KeyFor(row models.Row, headers []string) Key {
	if idx := columnIndex(headers, d.keyColumn); idx >= 0 && idx < len(row) {
		if v := strings.TrimSpace(row[idx]); v != "" {
			if digits := firstDigitRun(v); digits != "" {
				return Key(digits)
			}
			return Key(v)
		}
	}
	return Key(rowKeyPrefix + strings.Join(row, d.delimiter))
}

// IsDuplicate reports whether key was already recorded.
func (d *Deduplicator) IsDuplicate(key Key, seen KeySet) bool {
	_, ok := seen[key]
	return ok
}

// Record marks key as seen.
func (d *Deduplicator) Record(key Key, seen KeySet) {
	seen[key] = struct{}{}
}

func columnIndex(headers []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func firstDigitRun(s string) string {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return ""
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	return s[start:end]
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
