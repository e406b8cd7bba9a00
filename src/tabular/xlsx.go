package tabular

import (
	"fmt"
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const DEFAULT_SHEET = "Sheet1"

// ReadXLSX reads every sheet of a workbook in order. The first row of a sheet
// is its header; an empty sheet yields a table with no header.
//
// Cells are read unformatted: numbers (dates included, as serial numbers) come
// back as float64, booleans as bool and everything else as string. Formula
// cells yield their cached result. Each cell's style is kept so a rewrite
// renders the same way.
func ReadXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	w := &Workbook{Format: XLSX}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}
	w.Date1904 = props.Date1904 != nil && *props.Date1904
	for _, name := range f.GetSheetList() {
		t, err := readSheet(f, name, w)
		if err != nil {
			return nil, err
		}
		log.Infof("read sheet %q: %d columns, %d rows", name, len(t.Header), t.NumRows())
		w.Sheets = append(w.Sheets, t)
	}
	return w, nil
}

func readSheet(f *excelize.File, name string, w *Workbook) (*Table, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	t := NewTable(name, nil)
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	for col := range t.Header {
		style, err := cellStyle(f, name, col, 0, w)
		if err != nil {
			return nil, err
		}
		t.setHeaderStyle(col, style)
	}
	for i, record := range rows[1:] {
		row := make([]any, max(len(record), len(t.Header)))
		for col, raw := range record {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if row[col], err = typedValue(f, name, cell, raw); err != nil {
				return nil, err
			}
			style, err := cellStyle(f, name, col, i+1, w)
			if err != nil {
				return nil, err
			}
			t.SetStyle(i, col, style)
		}
		t.AppendRow(row)
	}
	return t, nil
}

// typedValue converts the raw text of a cell. Only numeric looking text needs
// the cell type, since shared strings like "00123" look the same.
func typedValue(f *excelize.File, sheet, cell, raw string) (any, error) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q cell %s: %w", sheet, cell, err)
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return n, nil
	case excelize.CellTypeBool:
		return raw == "1", nil
	default:
		return raw, nil
	}
}

// cellStyle returns the style ID of the cell at 0-based (col, row), recording
// the style definition in w the first time the ID is seen.
func cellStyle(f *excelize.File, sheet string, col, row int, w *Workbook) (int, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return 0, err
	}
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return 0, fmt.Errorf("read sheet %q cell %s style: %w", sheet, cell, err)
	}
	if id == 0 {
		return 0, nil
	}
	if _, ok := w.CellStyles[id]; ok {
		return id, nil
	}
	style, err := f.GetStyle(id)
	if err != nil {
		log.Warnf("sheet %q cell %s: dropping unreadable style %d: %v", sheet, cell, id, err)
		return 0, nil
	}
	if w.CellStyles == nil {
		w.CellStyles = make(map[int]*excelize.Style)
	}
	w.CellStyles[id] = style
	return id, nil
}

// WriteXLSX writes the sheets of w in order, keeping their names and the
// styles read from the source.
func WriteXLSX(out io.Writer, w *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if w.Date1904 {
		date1904 := true
		if err := f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}); err != nil {
			return fmt.Errorf("set workbook properties: %w", err)
		}
	}
	styles, err := registerStyles(f, w.CellStyles)
	if err != nil {
		return err
	}
	for i, t := range w.Sheets {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(DEFAULT_SHEET, name); err != nil {
				return fmt.Errorf("name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, t, styles); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// registerStyles maps source style IDs to IDs in the new file.
func registerStyles(f *excelize.File, defs map[int]*excelize.Style) (map[int]int, error) {
	ids := make(map[int]int, len(defs))
	for src, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return nil, fmt.Errorf("register style %d: %w", src, err)
		}
		ids[src] = id
	}
	return ids, nil
}

func writeSheet(f *excelize.File, name string, t *Table, styles map[int]int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("stream sheet %q: %w", name, err)
	}
	if len(t.Header) > 0 {
		header := make([]interface{}, len(t.Header))
		for i, h := range t.Header {
			header[i] = styledCell(h, styles[t.headerStyleAt(i)])
		}
		if err := sw.SetRow("A1", header); err != nil {
			return fmt.Errorf("write sheet %q header: %w", name, err)
		}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for col, v := range row {
			values[col] = styledCell(v, styles[t.StyleAt(i, col)])
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write sheet %q row %d: %w", name, i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", name, err)
	}
	return nil
}

func styledCell(v any, style int) interface{} {
	if style == 0 {
		return v
	}
	return excelize.Cell{StyleID: style, Value: v}
}
