package driver

import "strings"

// Off is the selector value that turns an optional region (pagination,
// empty-table marker) off. An empty value means "use the default".
const Off = "none"

// Enabled reports whether the optional selector v is set and not Off.
func Enabled(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != Off
}

// Selectors describes where things live in the page. The defaults match
// Element UI (el-table, el-pagination, el-radio-group); override them through
// the config file when the target page differs.
type Selectors struct {
	FilterGroup string `yaml:"filter_group"`
	FilterItem  string `yaml:"filter_item"`
	FilterLabel string `yaml:"filter_label"`
	FilterValue string `yaml:"filter_value"`

	HeaderRegion string `yaml:"header_region"`
	HeaderCell   string `yaml:"header_cell"`
	Pagination   string `yaml:"pagination"`
	BodyRegion   string `yaml:"body_region"`
	DataRow      string `yaml:"data_row"`
	EmptyRow     string `yaml:"empty_row"`
	CellInner    string `yaml:"cell_inner"`

	// NextButton candidates are tried in order; the first match wins.
	NextButton  []string `yaml:"next_button"`
	LoadingMask string   `yaml:"loading_mask"`
}

// DefaultSelectors returns the Element UI selector set.
func DefaultSelectors() Selectors {
	return Selectors{
		FilterGroup: ".el-radio-group",
		FilterItem:  ".el-radio",
		FilterLabel: ".el-radio__label",
		FilterValue: ".el-radio__original",

		HeaderRegion: ".el-table__header",
		HeaderCell:   "th",
		Pagination:   ".el-pagination, .pagination-container",
		BodyRegion:   ".el-table__body",
		DataRow:      "tr",
		EmptyRow:     ".el-table__empty-block",
		CellInner:    ".cell",

		NextButton: []string{
			".btn-next",
			".btn-next .el-icon-arrow-right",
			"button.btn-next",
			"button:has(.el-icon-arrow-right)",
		},
		LoadingMask: ".el-loading-mask",
	}
}

// RowWait is the selector that signals a table body has rendered: either a
// data row or the empty-table marker.
func (s Selectors) RowWait() string {
	row := s.BodyRegion + " " + s.DataRow
	if !Enabled(s.EmptyRow) {
		return row
	}
	return row + ", " + s.EmptyRow
}

// Merge fills zero-valued fields of s from fallback. Off is kept as is.
func (s Selectors) Merge(fallback Selectors) Selectors {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	out := Selectors{
		FilterGroup:  pick(s.FilterGroup, fallback.FilterGroup),
		FilterItem:   pick(s.FilterItem, fallback.FilterItem),
		FilterLabel:  pick(s.FilterLabel, fallback.FilterLabel),
		FilterValue:  pick(s.FilterValue, fallback.FilterValue),
		HeaderRegion: pick(s.HeaderRegion, fallback.HeaderRegion),
		HeaderCell:   pick(s.HeaderCell, fallback.HeaderCell),
		Pagination:   pick(s.Pagination, fallback.Pagination),
		BodyRegion:   pick(s.BodyRegion, fallback.BodyRegion),
		DataRow:      pick(s.DataRow, fallback.DataRow),
		EmptyRow:     pick(s.EmptyRow, fallback.EmptyRow),
		CellInner:    pick(s.CellInner, fallback.CellInner),
		LoadingMask:  pick(s.LoadingMask, fallback.LoadingMask),
		NextButton:   s.NextButton,
	}
	if len(out.NextButton) == 0 {
		out.NextButton = append([]string(nil), fallback.NextButton...)
	}
	return out
}
