package anon

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringNormalizerNullLike(t *testing.T) {
	n := NewStringNormalizer()
	var nilStr *string
	for _, v := range []any{nil, math.NaN(), float32(math.NaN()), nilStr} {
		assert.Equal(t, "", n.Normalize(v), "value %#v", v)
	}
}

func TestStringNormalizerCaseAndWhitespace(t *testing.T) {
	n := NewStringNormalizer()
	assert.Equal(t, "john", n.Normalize("JOHN"))
	assert.Equal(t, n.Normalize("JOHN"), n.Normalize(" john "))
	assert.Equal(t, n.Normalize("JOHN"), n.Normalize("John"))
	assert.Equal(t, n.Normalize("JOHN"), n.Normalize("\tJohn\n"))
}

func TestStringNormalizerUnicode(t *testing.T) {
	n := NewStringNormalizer()
	cases := []struct {
		name  string
		left  string
		right string
	}{
		{"sharp s folds to ss", "Straße", "STRASSE"},
		{"full width letters", "ＪＯＨＮ", "john"},
		{"ligature", "ﬁona", "Fiona"},
		{"composed vs decomposed", "Jos\u00e9", "Jose\u0301"},
		{"greek final sigma", "ΟΔΥΣΣΕΥΣ", "οδυσσευς"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, n.Normalize(tc.left), n.Normalize(tc.right))
		})
	}
}

func TestStringNormalizerScalars(t *testing.T) {
	n := NewStringNormalizer()
	assert.Equal(t, "42", n.Normalize(42))
	assert.Equal(t, "42", n.Normalize(int64(42)))
	assert.Equal(t, "1.5", n.Normalize(1.5))
	assert.Equal(t, "3", n.Normalize(3.0))
	assert.Equal(t, "true", n.Normalize(true))
	s := " Alice "
	assert.Equal(t, "alice", n.Normalize(&s))
}

func TestStringNormalizerIdempotent(t *testing.T) {
	n := NewStringNormalizer()
	inputs := []any{
		"John", "  MARY ", "José", "Straße", "ＡＢＣ", "ﬁ", "İstanbul", "ǰ", "ΣΊΣΥΦΟΣ",
		"alice@example.com", "", "  ", 12.25, nil,
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %#v", in)
	}
}

func TestStringNormalizerIdempotentAllRunes(t *testing.T) {
	if testing.Short() {
		t.Skip("sweeps every rune up to U+2FFFF")
	}
	n := NewStringNormalizer()
	var failures []string
	for r := rune(0); r <= 0x2FFFF; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue
		}
		c := string(r)
		for _, in := range []string{c, "a" + c, c + "\u0345", c + " "} {
			once := n.Normalize(in)
			if twice := n.Normalize(once); twice != once {
				failures = append(failures, fmt.Sprintf("%q: %q then %q", in, once, twice))
			}
		}
	}
	assert.Empty(t, failures, "%d inputs change when normalized twice", len(failures))
}

func TestStringNormalizerCherokee(t *testing.T) {
	n := NewStringNormalizer()
	// capital and small forms are one identity
	assert.Equal(t, n.Normalize("\u13A0"), n.Normalize("\uAB70"))
	assert.Equal(t, n.Normalize("\u13F0"), n.Normalize("\u13F8"))
	assert.Equal(t, "\u13A0", n.Normalize("\uAB70"))
	assert.Equal(t, "\u13F5", n.Normalize("\u13FD"))
}

func TestIdentifierNormalizer(t *testing.T) {
	n := NewIdentifierNormalizer()
	assert.Equal(t, "AbC-01", n.Normalize("  AbC-01 "))
	assert.NotEqual(t, n.Normalize("abc-01"), n.Normalize("ABC-01"))
	assert.Equal(t, "ＡＢＣ", n.Normalize("ＡＢＣ"))
	assert.Equal(t, "", n.Normalize(nil))
	assert.Equal(t, "", n.Normalize(math.NaN()))
	assert.Equal(t, "1001", n.Normalize(1001))
}
