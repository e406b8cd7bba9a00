package anon

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Hasher maps normalized strings to large non-negative integers with
// HMAC-SHA256 keyed by the salt.
/*
	The salt is the only key material. Same salt and same input always give the
	same integer, in this process or any other. Two exports made with different
	salts can't be linked, and without the salt a hash can't be checked against
	a guessed input.
*/
type Hasher struct {
	salt []byte
}

// NewHasher copies salt. An empty salt is replaced by SALT_SIZE random bytes.
func NewHasher(salt []byte) (*Hasher, error) {
	if len(salt) == 0 {
		generated, err := GenerateSalt(SALT_SIZE)
		if err != nil {
			return nil, err
		}
		return &Hasher{salt: generated}, nil
	}
	return &Hasher{salt: append([]byte(nil), salt...)}, nil
}

// HashToInt returns the digest of normalized read as a big-endian unsigned integer.
func (h *Hasher) HashToInt(normalized string) *big.Int {
	mac := hmac.New(sha256.New, h.salt)
	mac.Write([]byte(normalized))
	return new(big.Int).SetBytes(mac.Sum(nil))
}

func (h *Hasher) Salt() []byte {
	return append([]byte(nil), h.salt...)
}

func (h *Hasher) SaltHex() string {
	return hex.EncodeToString(h.salt)
}

// SaltFingerprint identifies a salt in logs and run history without revealing it.
func (h *Hasher) SaltFingerprint() string {
	return SaltFingerprint(h.salt)
}

func SaltFingerprint(salt []byte) string {
	sum := sha256.Sum256(salt)
	return hex.EncodeToString(sum[:])[:8]
}

func GenerateSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}
	return salt, nil
}

// ParseSaltHex decodes a salt previously reported by SaltHex.
func ParseSaltHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, fmt.Errorf("%w: empty salt", ErrMalformedSalt)
	}
	salt, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSalt, err)
	}
	return salt, nil
}
