package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	for p, want := range map[string]Format{
		"people.csv":                      CSV,
		"/tmp/People.CSV":                 CSV,
		"book.xlsx":                       XLSX,
		"macro.xlsm":                      XLSX,
		"s3://bucket/dir/out.csv":         CSV,
		"gs://bucket/in.xlsx?project=abc": XLSX,
	} {
		got, err := DetectFormat(p)
		require.NoError(t, err, p)
		assert.Equal(t, want, got, p)
	}

	for _, p := range []string{"old.xls", "data.json", "noext"} {
		_, err := DetectFormat(p)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), p)
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "people", SheetName("/data/people.csv"))
	assert.Equal(t, "people", SheetName("s3://bucket/people.csv?region=eu-west-1"))
}

func TestReadCSV(t *testing.T) {
	input := "Name,Email,Dept\nAlice,alice@co.com,R&D\nBob\n\"Smith, Jr\",,Sales,extra\n"
	tbl, err := ReadCSV(strings.NewReader(input), "people")
	require.NoError(t, err)

	want := &Table{
		Name:   "people",
		Header: []string{"Name", "Email", "Dept"},
		Rows: [][]any{
			{"Alice", "alice@co.com", "R&D"},
			{"Bob", nil, nil},
			{"Smith, Jr", "", "Sales", "extra"},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty")
	assert.Error(t, err)

	tbl, err := ReadCSV(strings.NewReader("A,B\n"), "header-only")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.Header)
	assert.Equal(t, 0, tbl.NumRows())
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := NewTable("t", []string{"Name", "Score", "Note"})
	tbl.AppendRow([]any{"Alice", 1.5, "line\nbreak"})
	tbl.AppendRow([]any{nil, int64(3), "quote \"x\""})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	back, err := ReadCSV(&buf, "t")
	require.NoError(t, err)
	want := [][]any{
		{"Alice", "1.5", "line\nbreak"},
		{"", "3", "quote \"x\""},
	}
	assert.Equal(t, tbl.Header, back.Header)
	if diff := cmp.Diff(want, back.Rows); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	s1 := NewTable("Employees", []string{"Name", "Email"})
	s1.AppendRow([]any{"Alice", "alice@co.com"})
	s1.AppendRow([]any{"Bob", "bob@co.com"})
	s2 := NewTable("Contractors", []string{"Full Name"})
	s2.AppendRow([]any{"Carol Diaz"})
	s3 := NewTable("Empty", nil)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, &Workbook{Format: XLSX, Sheets: []*Table{s1, s2, s3}}, XLSX))

	back, err := ReadWorkbook(&buf, XLSX, "ignored")
	require.NoError(t, err)
	require.Len(t, back.Sheets, 3)
	assert.Equal(t, XLSX, back.Format)

	if diff := cmp.Diff([]*Table{s1, s2, s3}, back.Sheets); diff != "" {
		t.Errorf("xlsx round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Name", "Email", "Full Name"}, back.Columns())
	assert.Equal(t, 3, back.NumRows())
}

func TestWriteWorkbookCSVNeedsOneSheet(t *testing.T) {
	w := &Workbook{Sheets: []*Table{NewTable("a", nil), NewTable("b", nil)}}
	assert.Error(t, WriteWorkbook(&bytes.Buffer{}, w, CSV))
}

func TestTableHelpers(t *testing.T) {
	tbl := NewTable("t", []string{"A", "B", "A"})
	tbl.AppendRow([]any{"1", "2", "3"})
	tbl.AppendRow([]any{"4"})

	assert.Equal(t, []int{0, 2}, tbl.ColumnIndexes("A"))
	assert.True(t, tbl.HasColumn("B"))
	assert.False(t, tbl.HasColumn("C"))

	col, ok := tbl.Column("B")
	require.True(t, ok)
	assert.Equal(t, []any{"2", nil}, col)

	clone := tbl.Clone()
	clone.Rows[0][0] = "changed"
	clone.Header[1] = "Z"
	assert.Equal(t, "1", tbl.Rows[0][0])
	assert.Equal(t, "B", tbl.Header[1])

	tbl.SetStyle(1, 2, 7)
	assert.Equal(t, 7, tbl.StyleAt(1, 2))
	assert.Equal(t, 0, tbl.StyleAt(0, 0))
	assert.Equal(t, 0, tbl.StyleAt(5, 5))
	clone = tbl.Clone()
	clone.Styles[1][2] = 9
	assert.Equal(t, 7, tbl.StyleAt(1, 2))

	// unstyled tables keep nil styles
	plain := NewTable("p", []string{"A"})
	plain.SetStyle(3, 0, 0)
	assert.Nil(t, plain.Styles)
	assert.Nil(t, plain.Clone().Styles)
}

func TestXLSXKeepsCellTypesAndStyles(t *testing.T) {
	a, b := 0.1, 0.2
	hired := time.Date(1987, 3, 4, 15, 30, 0, 0, time.UTC)

	src := excelize.NewFile()
	defer src.Close()
	require.NoError(t, src.SetSheetRow(DEFAULT_SHEET, "A1", &[]interface{}{"Hired", "Ratio", "Active", "Name", "Code", "Amount"}))
	bold, err := src.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, src.SetCellStyle(DEFAULT_SHEET, "A1", "F1", bold))
	require.NoError(t, src.SetCellValue(DEFAULT_SHEET, "A2", hired))
	require.NoError(t, src.SetCellValue(DEFAULT_SHEET, "B2", a+b))
	require.NoError(t, src.SetCellValue(DEFAULT_SHEET, "C2", true))
	require.NoError(t, src.SetCellValue(DEFAULT_SHEET, "D2", "Alice"))
	require.NoError(t, src.SetCellStr(DEFAULT_SHEET, "E2", "00123"))
	require.NoError(t, src.SetCellValue(DEFAULT_SHEET, "F2", 1234.5))
	money, err := src.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, src.SetCellStyle(DEFAULT_SHEET, "F2", "F2", money))
	srcBuf, err := src.WriteToBuffer()
	require.NoError(t, err)
	srcHired, err := src.GetCellValue(DEFAULT_SHEET, "A2")
	require.NoError(t, err)
	srcAmount, err := src.GetCellValue(DEFAULT_SHEET, "F2")
	require.NoError(t, err)

	w, err := ReadXLSX(bytes.NewReader(srcBuf.Bytes()))
	require.NoError(t, err)
	require.Len(t, w.Sheets, 1)
	sheet := w.Sheets[0]
	require.Equal(t, 1, sheet.NumRows())
	row := sheet.Rows[0]
	assert.IsType(t, float64(0), row[0])
	assert.Equal(t, a+b, row[1])
	assert.Equal(t, true, row[2])
	assert.Equal(t, "Alice", row[3])
	assert.Equal(t, "00123", row[4])
	assert.Equal(t, 1234.5, row[5])

	require.Contains(t, w.CellStyles, sheet.StyleAt(0, 0))
	assert.Equal(t, 22, w.CellStyles[sheet.StyleAt(0, 0)].NumFmt)
	assert.Equal(t, 0, sheet.StyleAt(0, 1))
	require.Len(t, sheet.HeaderStyles, 6)
	assert.True(t, w.CellStyles[sheet.HeaderStyles[0]].Font.Bold)

	var out bytes.Buffer
	require.NoError(t, WriteXLSX(&out, w))
	back, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer back.Close()

	got, err := back.GetCellValue(DEFAULT_SHEET, "A2")
	require.NoError(t, err)
	assert.Equal(t, srcHired, got)
	got, err = back.GetCellValue(DEFAULT_SHEET, "F2")
	require.NoError(t, err)
	assert.Equal(t, srcAmount, got)
	got, err = back.GetCellValue(DEFAULT_SHEET, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.30000000000000004", got)

	cellType, err := back.GetCellType(DEFAULT_SHEET, "C2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeBool, cellType)
	got, err = back.GetCellValue(DEFAULT_SHEET, "E2")
	require.NoError(t, err)
	assert.Equal(t, "00123", got)
	cellType, err = back.GetCellType(DEFAULT_SHEET, "E2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, cellType)
	assert.NotEqual(t, excelize.CellTypeUnset, cellType)

	styleID, err := back.GetCellStyle(DEFAULT_SHEET, "A2")
	require.NoError(t, err)
	style, err := back.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 22, style.NumFmt)
	styleID, err = back.GetCellStyle(DEFAULT_SHEET, "A1")
	require.NoError(t, err)
	style, err = back.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	// a second pass reads back what the first one wrote
	again, err := ReadXLSX(bytes.NewReader(mustWriteXLSX(t, w)))
	require.NoError(t, err)
	assert.Equal(t, sheet.Rows, again.Sheets[0].Rows)

	// dates stay readable when the output is csv
	var csvOut bytes.Buffer
	require.NoError(t, WriteWorkbook(&csvOut, w, CSV))
	assert.Equal(t, "Hired,Ratio,Active,Name,Code,Amount\n"+
		"1987-03-04 15:30:00,0.30000000000000004,true,Alice,00123,1234.5\n", csvOut.String())
}

func TestIsDateStyle(t *testing.T) {
	custom := func(code string) *excelize.Style { return &excelize.Style{CustomNumFmt: &code} }
	assert.True(t, isDateStyle(&excelize.Style{NumFmt: 14}))
	assert.True(t, isDateStyle(&excelize.Style{NumFmt: 22}))
	assert.False(t, isDateStyle(&excelize.Style{NumFmt: 4}))
	assert.False(t, isDateStyle(nil))
	assert.True(t, isDateStyle(custom("yyyy-mm-dd")))
	assert.True(t, isDateStyle(custom("[$-409]h:mm AM/PM")))
	assert.False(t, isDateStyle(custom("[Red]#,##0.00")))
	assert.False(t, isDateStyle(custom(`0.0" days"`)))

	assert.Equal(t, "2024-02-29", dateText(45351.0, &excelize.Style{NumFmt: 14}, false))
	assert.Equal(t, "2028-03-01", dateText(45351.0, &excelize.Style{NumFmt: 14}, true))
	assert.Equal(t, 45351.0, dateText(45351.0, &excelize.Style{NumFmt: 4}, false))
	assert.Equal(t, "x", dateText("x", &excelize.Style{NumFmt: 14}, false))
}

func mustWriteXLSX(t *testing.T, w *Workbook) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, w))
	return buf.Bytes()
}
