package anon

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSalt(b byte) []byte {
	return bytes.Repeat([]byte{b}, SALT_SIZE)
}

func TestHasherGeneratesSalt(t *testing.T) {
	h1, err := NewHasher(nil)
	require.NoError(t, err)
	h2, err := NewHasher([]byte{})
	require.NoError(t, err)

	assert.Len(t, h1.Salt(), SALT_SIZE)
	assert.Len(t, h2.Salt(), SALT_SIZE)
	assert.NotEqual(t, h1.Salt(), h2.Salt())
	assert.Len(t, h1.SaltHex(), 2*SALT_SIZE)
}

func TestHasherDeterministic(t *testing.T) {
	h1, err := NewHasher(fixedSalt(7))
	require.NoError(t, err)
	h2, err := NewHasher(fixedSalt(7))
	require.NoError(t, err)

	for _, in := range []string{"alice", "johnson", "emp001", ""} {
		a := h1.HashToInt(in)
		assert.Equal(t, 0, a.Cmp(h1.HashToInt(in)), "repeat call for %q", in)
		assert.Equal(t, 0, a.Cmp(h2.HashToInt(in)), "second hasher for %q", in)
		assert.GreaterOrEqual(t, a.Sign(), 0)
		assert.LessOrEqual(t, a.BitLen(), 256)
	}
}

// HMAC-SHA256 test vector (RFC 4231, test case 2) read as a big-endian integer.
func TestHasherKnownVector(t *testing.T) {
	h, err := NewHasher([]byte("Jefe"))
	require.NoError(t, err)
	want, ok := new(big.Int).SetString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", 16)
	require.True(t, ok)
	assert.Equal(t, 0, want.Cmp(h.HashToInt("what do ya want for nothing?")))
}

func TestHasherSaltSensitivity(t *testing.T) {
	h1, err := NewHasher(fixedSalt(1))
	require.NoError(t, err)
	h2, err := NewHasher(fixedSalt(2))
	require.NoError(t, err)

	for _, in := range []string{"alice", "bob", "carol", "emp001", "x"} {
		assert.NotEqual(t, 0, h1.HashToInt(in).Cmp(h2.HashToInt(in)), "input %q", in)
	}
}

func TestHasherCopiesSalt(t *testing.T) {
	salt := fixedSalt(3)
	h, err := NewHasher(salt)
	require.NoError(t, err)
	before := h.HashToInt("alice")

	salt[0] = 0xff
	h.Salt()[1] = 0xff
	assert.Equal(t, 0, before.Cmp(h.HashToInt("alice")))
}

func TestParseSaltHex(t *testing.T) {
	h, err := NewHasher(nil)
	require.NoError(t, err)

	salt, err := ParseSaltHex(h.SaltHex())
	require.NoError(t, err)
	assert.Equal(t, h.Salt(), salt)

	salt, err = ParseSaltHex("  0xABCD ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xcd}, salt)

	for _, bad := range []string{"", "0x", "xyz", "abc"} {
		_, err := ParseSaltHex(bad)
		assert.True(t, errors.Is(err, ErrMalformedSalt), "input %q: %v", bad, err)
	}
}

func TestSaltFingerprint(t *testing.T) {
	h, err := NewHasher(fixedSalt(9))
	require.NoError(t, err)
	assert.Len(t, h.SaltFingerprint(), 8)
	assert.NotContains(t, h.SaltHex(), h.SaltFingerprint())
}
