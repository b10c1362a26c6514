package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/tablecrawl/internal/dedup"
	"github.com/law-makers/tablecrawl/internal/engine"
	"github.com/law-makers/tablecrawl/internal/output"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func options(labels ...string) []models.FilterOption {
	out := make([]models.FilterOption, len(labels))
	for i, l := range labels {
		out[i] = models.FilterOption{Position: i, Label: l, Value: l}
	}
	return out
}

func TestChoose_FlagSkipsPrompt(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(""))

	got, err := choose(in, &out, "Primary", "2,1", options("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, labels(got))
	assert.Empty(t, out.String())
}

func TestChoose_Prompts(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(" 3 , 1\n"))

	got, err := choose(in, &out, "Secondary", "", options("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, labels(got))
	assert.Contains(t, out.String(), "Secondary")
}

func TestChoose_LastLineWithoutNewline(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("2"))
	got, err := choose(in, &bytes.Buffer{}, "Primary", "", options("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, labels(got))
}

func TestChoose_EmptyInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	_, err := choose(in, &bytes.Buffer{}, "Primary", "", options("a"))
	assert.Error(t, err)

	in = bufio.NewReader(strings.NewReader("9\n"))
	_, err = choose(in, &bytes.Buffer{}, "Primary", "", options("a"))
	assert.ErrorIs(t, err, engine.ErrEmptySelection)
}

func outcomeAcc(t *testing.T) *dedup.Accumulator {
	t.Helper()
	d, err := dedup.New("id", dedup.DefaultDelimiter)
	require.NoError(t, err)
	acc := dedup.NewAccumulator(d)
	acc.Add([]string{"id"}, []models.Row{{"1"}, {"1"}})
	return acc
}

func TestPrintOutcome_Success(t *testing.T) {
	var out bytes.Buffer
	files := output.Files{Raw: "r.csv", Dedup: "d.csv"}
	printOutcome(&out, outcomeAcc(t), files, func(n string) string { return "dir/" + n }, 3*time.Second, nil, nil)

	assert.Contains(t, out.String(), "2 rows, 1 unique, 1 duplicates in 3s")
	assert.Contains(t, out.String(), "dir/r.csv")
	assert.Contains(t, out.String(), "dir/d.csv")
}

func TestPrintOutcome_DedupWriteFailed(t *testing.T) {
	var out bytes.Buffer
	files := output.Files{Raw: "r.csv"}
	printOutcome(&out, outcomeAcc(t), files, func(n string) string { return "dir/" + n }, 0, nil, errors.New("disk full"))

	assert.Contains(t, out.String(), "export failed: disk full")
	assert.Contains(t, out.String(), "raw rows were written to dir/r.csv")
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- keep this line as is", 9)
	assert.Equal(t, "one two\nthree\nfour\n\n- keep this line as is", got)
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"extract", "filters", "compare", "login", "sessions"} {
		assert.Contains(t, names, want)
	}
}

func labels(opts []models.FilterOption) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}
