package tabular

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat picks the format from the extension of a local path or an
// object store URL (query parameters are ignored).
func DetectFormat(p string) (Format, error) {
	p, _, _ = strings.Cut(p, "?")
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".csv":
		return CSV, nil
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks are not supported, save %q as .xlsx", ErrUnsupportedFormat, p)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// SheetName derives the sheet name of a single-sheet CSV source from its path.
func SheetName(p string) string {
	p, _, _ = strings.Cut(p, "?")
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

func ReadWorkbook(r io.Reader, format Format, name string) (*Workbook, error) {
	switch format {
	case CSV:
		t, err := ReadCSV(r, name)
		if err != nil {
			return nil, err
		}
		return &Workbook{Format: CSV, Sheets: []*Table{t}}, nil
	case XLSX:
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteWorkbook writes w in format. A CSV target takes a single sheet.
func WriteWorkbook(out io.Writer, w *Workbook, format Format) error {
	switch format {
	case CSV:
		if len(w.Sheets) != 1 {
			return fmt.Errorf("csv output holds one sheet, workbook has %d", len(w.Sheets))
		}
		return writeCSV(out, w.Sheets[0], w)
	case XLSX:
		return WriteXLSX(out, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// cellText renders a cell for text formats. nil is an empty cell.
func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
