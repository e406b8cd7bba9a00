package tabular

import (
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// built-in number formats that show a date or a time
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// quoted literals, escapes and [Red]/[$-409] sections never hold date codes
var numFmtLiterals = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)

func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt == nil {
		return dateNumFmts[style.NumFmt]
	}
	code := strings.ToLower(numFmtLiterals.ReplaceAllString(*style.CustomNumFmt, ""))
	return strings.ContainsAny(code, "ydh") || strings.Contains(code, "ss")
}

// dateText renders a serial date cell of a date styled XLSX cell the way a
// CSV reader expects it. Other cells are returned unchanged.
func dateText(v any, style *excelize.Style, date1904 bool) any {
	serial, ok := v.(float64)
	if !ok || !isDateStyle(style) {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return v
	}
	switch {
	case serial < 1:
		return t.Format("15:04:05")
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}
