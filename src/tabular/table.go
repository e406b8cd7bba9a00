package tabular

import (
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

// Table is an in-memory sheet: a header row and data rows. Cells hold scalar
// values (string, float64, bool) or nil for missing values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any

	// Workbook style IDs, parallel to Header and Rows. Both stay nil for
	// unstyled sheets; a missing entry means the default style.
	HeaderStyles []int
	Styles       [][]int
}

func NewTable(name string, header []string) *Table {
	return &Table{Name: name, Header: header}
}

func (t *Table) AppendRow(row []any) {
	t.Rows = append(t.Rows, row)
}

func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndexes returns every position of column in the header. Source files
// may repeat a header name.
func (t *Table) ColumnIndexes(column string) []int {
	var idxs []int
	for i, h := range t.Header {
		if h == column {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (t *Table) HasColumn(column string) bool {
	return lo.Contains(t.Header, column)
}

// Column returns the cells of the first column named column. Short rows yield nil.
func (t *Table) Column(column string) ([]any, bool) {
	idx := lo.IndexOf(t.Header, column)
	if idx < 0 {
		return nil, false
	}
	cells := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			cells[i] = row[idx]
		}
	}
	return cells, true
}

// StyleAt returns the style ID of data cell (row, col), 0 when unstyled.
func (t *Table) StyleAt(row, col int) int {
	if row < len(t.Styles) && col < len(t.Styles[row]) {
		return t.Styles[row][col]
	}
	return 0
}

// SetStyle records the style ID of data cell (row, col).
func (t *Table) SetStyle(row, col, style int) {
	if style == 0 && t.StyleAt(row, col) == 0 {
		return
	}
	for len(t.Styles) <= row {
		t.Styles = append(t.Styles, nil)
	}
	for len(t.Styles[row]) <= col {
		t.Styles[row] = append(t.Styles[row], 0)
	}
	t.Styles[row][col] = style
}

func (t *Table) headerStyleAt(col int) int {
	if col < len(t.HeaderStyles) {
		return t.HeaderStyles[col]
	}
	return 0
}

func (t *Table) setHeaderStyle(col, style int) {
	if style == 0 && t.headerStyleAt(col) == 0 {
		return
	}
	for len(t.HeaderStyles) <= col {
		t.HeaderStyles = append(t.HeaderStyles, 0)
	}
	t.HeaderStyles[col] = style
}

// Clone copies the header, every row and the styles so the copy can be
// modified freely.
func (t *Table) Clone() *Table {
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]any(nil), row...)
	}
	var styles [][]int
	if t.Styles != nil {
		styles = make([][]int, len(t.Styles))
		for i, row := range t.Styles {
			styles[i] = append([]int(nil), row...)
		}
	}
	var headerStyles []int
	if t.HeaderStyles != nil {
		headerStyles = append([]int(nil), t.HeaderStyles...)
	}
	return &Table{
		Name:         t.Name,
		Header:       append([]string(nil), t.Header...),
		Rows:         rows,
		HeaderStyles: headerStyles,
		Styles:       styles,
	}
}

// Workbook is an ordered set of sheets read from one file. CSV files have a
// single sheet.
type Workbook struct {
	Format     Format
	Sheets     []*Table
	// style ID used by the sheets -> its definition in the source file
	CellStyles map[int]*excelize.Style
	// serial dates count from 1904-01-01 instead of 1900-01-00
	Date1904   bool
}

// Columns returns the union of all sheet headers, in first-seen order.
func (w *Workbook) Columns() []string {
	var columns []string
	for _, s := range w.Sheets {
		columns = append(columns, s.Header...)
	}
	return lo.Uniq(columns)
}

func (w *Workbook) NumRows() int {
	return lo.SumBy(w.Sheets, func(s *Table) int { return s.NumRows() })
}
