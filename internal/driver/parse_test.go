package driver

import (
	"testing"

	"github.com/law-makers/tablecrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<!DOCTYPE html>
<html><body>
<div class="el-radio-group">
  <label class="el-radio"><span class="el-radio__input"><input class="el-radio__original" type="radio" value="1"></span><span class="el-radio__label"> 在售 </span></label>
  <label class="el-radio"><span class="el-radio__input"><input class="el-radio__original" type="radio" value="2"></span><span class="el-radio__label">已售</span></label>
  <label class="el-radio"><span class="el-radio__label">未知</span></label>
</div>
<div class="el-table">
  <div class="el-table__header-wrapper"><table class="el-table__header"><thead><tr>
    <th><div class="cell">房源编码</div></th>
    <th><div class="cell">小区</div></th>
    <th><div class="cell"></div></th>
  </tr></thead></table></div>
  <div class="el-table__body-wrapper"><table class="el-table__body"><tbody>
    <tr><td><div class="cell"> 1001 </div></td><td><div class="cell">A</div></td><td><div class="cell">x</div></td></tr>
    <tr><td><div class="cell">1002</div></td><td><div class="cell">B, "C"</div></td><td><div class="cell">y</div></td></tr>
  </tbody></table></div>
  <div class="el-table__fixed"><table class="el-table__body"><tbody>
    <tr><td><div class="cell">1001</div></td></tr>
  </tbody></table></div>
</div>
<div class="el-pagination">
  <button type="button" class="btn-next" disabled="disabled"><i class="el-icon el-icon-arrow-right"></i></button>
</div>
</body></html>`

func TestParseHeaders(t *testing.T) {
	doc, err := ParseDocument(fixture)
	require.NoError(t, err)

	headers := ParseHeaders(doc, DefaultSelectors())
	assert.Equal(t, []string{"房源编码", "小区"}, headers)
}

func TestParseRows_FirstBodyOnly(t *testing.T) {
	doc, err := ParseDocument(fixture)
	require.NoError(t, err)

	rows := ParseRows(doc, DefaultSelectors(), 2)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Row{"1001", "A"}, rows[0])
	assert.Equal(t, models.Row{"1002", `B, "C"`}, rows[1])
}

func TestParseRows_EmptyMarkerSkipped(t *testing.T) {
	html := `<table class="el-table__body"><tbody>
<tr class="el-table__empty-block"><td>暂无数据</td></tr>
</tbody></table>`
	doc, err := ParseDocument(html)
	require.NoError(t, err)

	assert.Empty(t, ParseRows(doc, DefaultSelectors(), 3))
}

func TestParseOptions(t *testing.T) {
	doc, err := ParseDocument(fixture)
	require.NoError(t, err)

	sel := DefaultSelectors()
	opts := ParseOptions(doc, sel, sel.FilterGroup)
	require.Len(t, opts, 3)

	assert.Equal(t, "在售", opts[0].Label)
	assert.Equal(t, "1", opts[0].Value)
	assert.Equal(t, 0, opts[0].Position)
	assert.Equal(t, models.Handle{Selector: ".el-radio-group .el-radio", Index: 1}, opts[1].Handle)
	// no input: value falls back to the label
	assert.Equal(t, "未知", opts[2].Value)
}

func TestParseNextAndDisabled(t *testing.T) {
	doc, err := ParseDocument(fixture)
	require.NoError(t, err)

	h, ok := ParseNext(doc, DefaultSelectors())
	require.True(t, ok)
	assert.Equal(t, ".btn-next", h.Selector)
	assert.True(t, ParseDisabled(doc, h))

	// an icon candidate inherits its button's state
	icon := models.Handle{Selector: ".btn-next .el-icon-arrow-right"}
	assert.True(t, ParseDisabled(doc, icon))
}

func TestParseDisabled_Variants(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"enabled", `<button class="btn-next">next</button>`, false},
		{"class", `<button class="btn-next is-disabled">next</button>`, true},
		{"hidden", `<button class="btn-next" style="display: none">next</button>`, true},
		{"missing", `<div></div>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.html)
			require.NoError(t, err)
			got := ParseDisabled(doc, models.Handle{Selector: ".btn-next"})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNext_Fallback(t *testing.T) {
	html := `<div class="pagination-container"><button><i class="el-icon-arrow-right"></i></button></div>`
	doc, err := ParseDocument(html)
	require.NoError(t, err)

	h, ok := ParseNext(doc, DefaultSelectors())
	require.True(t, ok)
	assert.Equal(t, "button:has(.el-icon-arrow-right)", h.Selector)
	assert.False(t, ParseDisabled(doc, h))
}

func TestSelectorsOff(t *testing.T) {
	sel := Selectors{Pagination: Off, EmptyRow: Off}.Merge(DefaultSelectors())
	assert.Equal(t, Off, sel.Pagination)
	assert.False(t, Enabled(sel.Pagination))
	assert.Equal(t, ".el-table__body tr", sel.RowWait())
	assert.True(t, Enabled(DefaultSelectors().EmptyRow))

	doc, err := ParseDocument(fixture)
	require.NoError(t, err)
	assert.NotEmpty(t, ParseRows(doc, sel, 2))
}

func TestSelectorsMerge(t *testing.T) {
	custom := Selectors{FilterGroup: "#status"}
	merged := custom.Merge(DefaultSelectors())
	assert.Equal(t, "#status", merged.FilterGroup)
	assert.Equal(t, ".el-table__body", merged.BodyRegion)
	assert.NotEmpty(t, merged.NextButton)
}
