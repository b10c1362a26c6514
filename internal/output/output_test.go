package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCSV_RoundTrip(t *testing.T) {
	p := models.TablePayload{
		Headers: []string{"房源编码", "备注"},
		Rows: []models.Row{
			{"1001", "plain"},
			{"1002", "a, b"},
			{"1003", `say "hi"`},
			{"1004", "line1\nline2"},
			{"1005", ""},
		},
	}

	for _, opts := range []EncodeOptions{{}, {CRLF: true}} {
		data, err := EncodeCSV(p, opts)
		require.NoError(t, err)

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)

		want := [][]string{p.Headers}
		for _, r := range p.Rows {
			want = append(want, r)
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("round trip mismatch (crlf=%v) (-want +got):\n%s", opts.CRLF, diff)
		}
	}
}

func TestEncodeCSV_Quoting(t *testing.T) {
	data, err := EncodeCSV(models.TablePayload{
		Headers: []string{"a", "b"},
		Rows:    []models.Row{{`x"y`, "1,2"}},
	}, EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n\"x\"\"y\",\"1,2\"\n", string(data))

	data, err = EncodeCSV(models.TablePayload{Headers: []string{"a"}}, EncodeOptions{CRLF: true, BOM: true})
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFa\r\n", string(data))
}

func newAcc(t *testing.T) *dedup.Accumulator {
	t.Helper()
	d, err := dedup.New("id", dedup.DefaultDelimiter)
	require.NoError(t, err)
	acc := dedup.NewAccumulator(d)
	acc.Add([]string{"id", "name"}, []models.Row{{"1", "x"}, {"2", "y"}, {"2", "y"}})
	return acc
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
}

func TestExporter_FileSink(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Sink: FileSink{Dir: dir}, Label: "houses", Now: fixedNow}

	files, err := e.Export(context.Background(), newAcc(t))
	require.NoError(t, err)
	assert.Equal(t, "houses_raw_2024-03-09.csv", files.Raw)
	assert.Equal(t, "houses_dedup_2024-03-09.csv", files.Dedup)

	raw, err := os.ReadFile(filepath.Join(dir, files.Raw))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,x\n2,y\n2,y\n", string(raw))

	kept, err := os.ReadFile(filepath.Join(dir, files.Dedup))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,x\n2,y\n", string(kept))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestExporter_EmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Sink: FileSink{Dir: dir}}
	d, err := dedup.New("id", dedup.DefaultDelimiter)
	require.NoError(t, err)

	files, err := e.Export(context.Background(), dedup.NewAccumulator(d))
	require.NoError(t, err)
	assert.Equal(t, Files{}, files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSink struct{}

func (failingSink) Deliver(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestExporter_SinkError(t *testing.T) {
	e := &Exporter{Sink: failingSink{}, Now: fixedNow}
	_, err := e.Export(context.Background(), newAcc(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrSink))
	assert.True(t, engine.IsFatal(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestExporter_WriterSink(t *testing.T) {
	var buf bytes.Buffer
	e := &Exporter{Sink: &WriterSink{W: &buf}, Label: "a/b", Now: fixedNow}
	files, err := e.Export(context.Background(), newAcc(t))
	require.NoError(t, err)
	assert.Equal(t, "a_b_raw_2024-03-09.csv", files.Raw)
	assert.Equal(t, 2, strings.Count(buf.String(), "id,name\n"))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, Report{
		URL:     "https://example.com/list",
		Label:   "houses",
		Started: fixedNow(),
		Raw:     3,
		Kept:    2,
		Combinations: []models.CombinationResult{
			{Primary: models.FilterOption{Label: "P"}, Secondary: models.FilterOption{Label: "A"}, Pages: 1, Extracted: 3, Kept: 2, Duplicates: 1},
			{Primary: models.FilterOption{Label: "P"}, Secondary: models.FilterOption{Label: "B"}, Skipped: true, Reason: "no rows"},
		},
		Files: Files{Raw: "houses_raw.csv", Dedup: "houses_dedup.csv"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "# Extraction report")
	assert.Contains(t, out, "skipped: no rows")
	assert.Contains(t, out, "houses_dedup.csv")
}
