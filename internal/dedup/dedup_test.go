package dedup

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Delimiter(t *testing.T) {
	_, err := New("id", "")
	assert.True(t, errors.Is(err, ErrInvalidDelimiter))

	_, err = New("id", "|1|")
	assert.True(t, errors.Is(err, ErrInvalidDelimiter))

	d, err := New(" id ", DefaultDelimiter)
	require.NoError(t, err)
	assert.Equal(t, "id", d.KeyColumn())
}

func TestKeyFor(t *testing.T) {
	d, err := New("房源编码", "|")
	require.NoError(t, err)
	headers := []string{"房源编码", "小区"}

	tests := []struct {
		name string
		row  models.Row
		want Key
	}{
		{"digit run", models.Row{"FY-00123-A 45", "x"}, "00123"},
		{"no digits", models.Row{" ABC ", "x"}, "ABC"},
		{"empty falls back", models.Row{"  ", "x"}, rowKeyPrefix + "  |x"},
		{"non-ascii digits ignored", models.Row{"编号１２", "x"}, "编号１２"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.KeyFor(tt.row, headers))
		})
	}
}

func TestKeyFor_MissingColumn(t *testing.T) {
	d, err := New("id", ";")
	require.NoError(t, err)
	assert.Equal(t, Key(rowKeyPrefix+"a;b"), d.KeyFor(models.Row{"a", "b"}, []string{"x", "y"}))
}

func TestKeyFor_LiteralNeverMatchesJoinedRow(t *testing.T) {
	d, err := New("id", DefaultDelimiter)
	require.NoError(t, err)
	acc := NewAccumulator(d)

	// The first row keys on the literal "a|b". The second is too short to
	// reach the id column and falls back to its joined cells, also "a|b".
	kept, dups := acc.Add([]string{"name", "id"}, []models.Row{{"x", "a|b"}, {"a|b"}})
	assert.Equal(t, 2, kept)
	assert.Equal(t, 0, dups)
}

func TestAccumulator_Scenario(t *testing.T) {
	d, err := New("id", DefaultDelimiter)
	require.NoError(t, err)
	acc := NewAccumulator(d)
	headers := []string{"id", "name"}

	kept, dups := acc.Add(headers, []models.Row{{"1", "x"}, {"2", "y"}})
	assert.Equal(t, 2, kept)
	assert.Equal(t, 0, dups)

	kept, dups = acc.Add(headers, []models.Row{{"2", "y"}, {"3", "z"}})
	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, dups)

	assert.Len(t, acc.Raw, 4)
	assert.Equal(t, []models.Row{{"1", "x"}, {"2", "y"}, {"3", "z"}}, acc.Kept)
	assert.Equal(t, 1, acc.Duplicates)
	assert.Equal(t, len(acc.Raw), len(acc.Kept)+acc.Duplicates)
}

func TestAccumulator_FirstSeenWins(t *testing.T) {
	d, err := New("id", DefaultDelimiter)
	require.NoError(t, err)
	acc := NewAccumulator(d)

	acc.Add([]string{"id", "v"}, []models.Row{{"7", "first"}})
	acc.Add(nil, []models.Row{{"#7", "second"}})

	require.Len(t, acc.Kept, 1)
	assert.Equal(t, "first", acc.Kept[0][1])
}

func TestAccumulator_Idempotent(t *testing.T) {
	rows := []models.Row{
		{"10", "a"}, {"11", "b"}, {"10", "c"}, {"", "d"}, {"", "d"}, {"x", "e"}, {"x", "f"},
	}
	run := func() []models.Row {
		d, err := New("id", DefaultDelimiter)
		require.NoError(t, err)
		acc := NewAccumulator(d)
		acc.Add([]string{"id", "v"}, rows)
		assert.Equal(t, len(acc.Raw), len(acc.Kept)+acc.Duplicates)
		return acc.Kept
	}

	first, second := run(), run()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("dedup output differs between runs (-first +second):\n%s", diff)
	}
	assert.Len(t, first, 4)
}

func TestAccumulator_Empty(t *testing.T) {
	d, err := New("", DefaultDelimiter)
	require.NoError(t, err)
	acc := NewAccumulator(d)
	assert.True(t, acc.Empty())
	assert.Empty(t, acc.KeptPayload().Rows)
}
