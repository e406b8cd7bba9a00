package anon

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Normalizer interface {
	// Normalize returns the comparable form of a raw cell value.
	// Null-like values (nil, NaN, nil pointers) normalize to "".
	Normalize(value any) string
}

// full Unicode case folding; the fold Caser is stateless and safe to share
var folder = cases.Fold()

// StringNormalizer canonicalizes free-text values: NFKC, trimmed, case folded.
// Values equal after normalization are the same identity downstream.
type StringNormalizer struct{}

func NewStringNormalizer() Normalizer {
	return StringNormalizer{}
}

func (StringNormalizer) Normalize(value any) string {
	text, ok := textOf(value)
	if !ok {
		return ""
	}
	text = norm.NFKC.String(text)
	text = strings.TrimSpace(text)
	text = folder.String(text)
	// folding can expand into sequences NFKC would recompose
	return strings.Map(foldCherokee, norm.NFKC.String(text))
}

// foldCherokee maps Cherokee small letters to the capitals they fold to in
// Unicode case folding. cases.Fold goes the other way, so folding its own
// output would flip them back.
func foldCherokee(r rune) rune {
	switch {
	case r >= 0xAB70 && r <= 0xABBF:
		return r - 0xAB70 + 0x13A0
	case r >= 0x13F8 && r <= 0x13FD:
		return r - 0x13F8 + 0x13F0
	default:
		return r
	}
}

// IdentifierNormalizer only trims whitespace. Identifiers may be case
// sensitive, so neither case nor Unicode form is touched.
type IdentifierNormalizer struct{}

func NewIdentifierNormalizer() Normalizer {
	return IdentifierNormalizer{}
}

func (IdentifierNormalizer) Normalize(value any) string {
	text, ok := textOf(value)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

// textOf renders a scalar cell value as text. The bool result is false for
// null-like values.
func textOf(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case []byte:
		return string(v), true
	case float64:
		if math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		if math.IsNaN(float64(v)) {
			return "", false
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		if isNilPointer(v) {
			return "", false
		}
		return v.String(), true
	}
	if isNilPointer(value) {
		return "", false
	}
	return fmt.Sprint(value), true
}

func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
