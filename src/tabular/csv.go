package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// ReadCSV reads a CSV stream whose first record is the header. Rows shorter
// than the header are padded with nil cells.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are allowed
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv %q: no header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv %q header: %w", name, err)
	}

	t := NewTable(name, header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %q: %w", name, err)
		}
		t.AppendRow(padRow(record, len(header)))
	}
	log.Infof("read csv %q: %d columns, %d rows", name, len(header), t.NumRows())
	return t, nil
}

func WriteCSV(w io.Writer, t *Table) error {
	return writeCSV(w, t, &Workbook{})
}

// writeCSV renders date styled cells of a sheet read from XLSX as dates, with
// the styles and date system of book.
func writeCSV(w io.Writer, t *Table, book *Workbook) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write csv %q header: %w", t.Name, err)
	}
	record := make([]string, 0, len(t.Header))
	for i, row := range t.Rows {
		record = record[:0]
		for col, cell := range row {
			if style := t.StyleAt(i, col); style != 0 {
				cell = dateText(cell, book.CellStyles[style], book.Date1904)
			}
			record = append(record, cellText(cell))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv %q row %d: %w", t.Name, i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write csv %q: %w", t.Name, err)
	}
	return nil
}

func padRow(record []string, width int) []any {
	row := make([]any, max(len(record), width))
	for i, v := range record {
		row[i] = v
	}
	return row
}
