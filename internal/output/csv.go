// Package output encodes extracted tables and hands them to a sink.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/law-makers/tablecrawl/pkg/models"
)

// utf8BOM lets spreadsheet software detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodeOptions controls the CSV dialect.
type EncodeOptions struct {
	CRLF bool
	BOM  bool
}

// EncodeCSV writes the header line followed by every row. Cells holding a
// comma, quote or line break are quoted with inner quotes doubled.
func EncodeCSV(p models.TablePayload, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if opts.BOM {
		buf.Write(utf8BOM)
	}

	w := csv.NewWriter(&buf)
	w.UseCRLF = opts.CRLF

	if err := w.Write(p.Headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range p.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
