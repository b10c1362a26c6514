package models

import "time"

// Handle locates a clickable element on the page: the Index-th match of Selector.
// Drivers treat it as opaque; the engine only passes it back.
type Handle struct {
	Selector string `json:"selector"`
	Index    int    `json:"index"`
}

// FilterOption is one selectable filter value discovered on the page.
type FilterOption struct {
	Position int    `json:"position"` // 0-based, in document order
	Label    string `json:"label"`
	Value    string `json:"value"`
	Handle   Handle `json:"-"`
}

// Ordinal returns the 1-based number shown to users.
func (o FilterOption) Ordinal() int {
	return o.Position + 1
}

// Row is one table row; its length equals the header count.
type Row []string

// TablePayload is a header line plus the rows below it.
type TablePayload struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Len returns the number of data rows.
func (p *TablePayload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Rows)
}

// CombinationResult records what happened for one primary x secondary pairing.
type CombinationResult struct {
	Primary    FilterOption  `json:"primary"`
	Secondary  FilterOption  `json:"secondary"`
	Pages      int           `json:"pages"`
	Extracted  int           `json:"extracted"`
	Kept       int           `json:"kept"`
	Duplicates int           `json:"duplicates"`
	Skipped    bool          `json:"skipped"`
	Reason     string        `json:"reason,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Label renders the pairing as "primary / secondary".
func (c CombinationResult) Label() string {
	return c.Primary.Label + " / " + c.Secondary.Label
}
