package compare

import (
	"errors"
	"strings"
	"testing"

	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oldCSV = "\xEF\xBB\xBF房源编码,项目名称,意向售价(万元)\n" +
	"1001,华府,300\n" +
	"1002,海景,450\n" +
	"1003,南山,\"1,000\"\n"

const newCSV = "房源编码,项目名称,意向售价(万元),委托期限\n" +
	"1002,海景,430,2024-12-31\n" +
	"1003,南山,\"1,000\",\n" +
	"1004,前海,800,\n"

func TestDiff(t *testing.T) {
	old, err := Read(strings.NewReader(oldCSV))
	require.NoError(t, err)
	assert.Equal(t, "房源编码", old.Headers[0], "BOM must be stripped")

	cur, err := Read(strings.NewReader(newCSV))
	require.NoError(t, err)

	res, err := Diff(old, cur, "房源编码")
	require.NoError(t, err)

	assert.Equal(t, []models.Row{{"1001", "华府", "300"}}, res.OnlyOld)
	assert.Equal(t, []models.Row{{"1004", "前海", "800", ""}}, res.OnlyNew)
	assert.Equal(t, 2, res.Common)
	assert.Equal(t, 1, res.ChangedKeys)
	assert.Equal(t, []Change{
		{Key: "1002", Column: "意向售价(万元)", Old: "450", New: "430"},
		{Key: "1002", Column: "委托期限", Old: "", New: "2024-12-31"},
	}, res.Changes)

	p := res.ChangesPayload("房源编码")
	assert.Equal(t, []string{"房源编码", "column", "old", "new"}, p.Headers)
	assert.Len(t, p.Rows, 2)
}

func TestDiff_MissingKeyColumn(t *testing.T) {
	p := models.TablePayload{Headers: []string{"a"}}
	_, err := Diff(p, p, "id")
	assert.True(t, errors.Is(err, ErrKeyColumn))
}

func TestDiff_FirstRowPerKey(t *testing.T) {
	old := models.TablePayload{Headers: []string{"id", "v"}, Rows: []models.Row{{"1", "a"}, {"1", "b"}}}
	cur := models.TablePayload{Headers: []string{"id", "v"}, Rows: []models.Row{{"1", "a"}}}
	res, err := Diff(old, cur, "id")
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 1, res.Common)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}
