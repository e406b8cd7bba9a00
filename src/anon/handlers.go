package anon

import (
	"math/big"
	"strings"
	"unicode"
)

// HandlerDeps are the run-scoped collaborators a handler is bound to. All
// handlers of one run receive the same instances.
type HandlerDeps struct {
	Hasher               *Hasher
	Normalizer           Normalizer
	IdentifierNormalizer Normalizer
	Identities           *IdentityGenerator
}

type FirstNameHandler struct {
	deps HandlerDeps
}

func NewFirstNameHandler(deps HandlerDeps) ColumnHandler {
	return &FirstNameHandler{deps: deps}
}

func (h *FirstNameHandler) Anonymize(value any) string {
	normalized := h.deps.Normalizer.Normalize(value)
	if normalized == "" {
		return ""
	}
	return h.deps.Identities.FirstName(h.deps.Hasher.HashToInt(normalized))
}

type LastNameHandler struct {
	deps HandlerDeps
}

func NewLastNameHandler(deps HandlerDeps) ColumnHandler {
	return &LastNameHandler{deps: deps}
}

func (h *LastNameHandler) Anonymize(value any) string {
	normalized := h.deps.Normalizer.Normalize(value)
	if normalized == "" {
		return ""
	}
	return h.deps.Identities.LastName(h.deps.Hasher.HashToInt(normalized))
}

// FullNameHandler handles "First [Middle...] Last". Middle tokens are dropped.
type FullNameHandler struct {
	deps HandlerDeps
}

func NewFullNameHandler(deps HandlerDeps) ColumnHandler {
	return &FullNameHandler{deps: deps}
}

func (h *FullNameHandler) Anonymize(value any) string {
	tokens := strings.Fields(h.deps.Normalizer.Normalize(value))
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return h.deps.firstName(tokens[0])
	default:
		first := h.deps.firstName(tokens[0])
		last := h.deps.lastName(tokens[len(tokens)-1])
		return first + " " + last
	}
}

// FullNameInvertedHandler handles family-name-first values such as
// "Johnson Alice" or "Johnson, Alice". The last token is the given name and the
// first token the family name, so "Johnson Alice" and "Alice Johnson" (in a
// full_name column) map to the same identity. Output keeps the inverted order
// and the comma, if there was one.
type FullNameInvertedHandler struct {
	deps HandlerDeps
}

func NewFullNameInvertedHandler(deps HandlerDeps) ColumnHandler {
	return &FullNameInvertedHandler{deps: deps}
}

func (h *FullNameInvertedHandler) Anonymize(value any) string {
	normalized := h.deps.Normalizer.Normalize(value)
	// "Johnson,Alice" has no space after the comma
	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	withComma := strings.Contains(normalized, ",")

	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return h.deps.firstName(tokens[0])
	default:
		first := h.deps.firstName(tokens[len(tokens)-1])
		last := h.deps.lastName(tokens[0])
		if withComma {
			return last + ", " + first
		}
		return last + " " + first
	}
}

// EmailHandler rebuilds the local part from synthetic names and keeps the domain.
type EmailHandler struct {
	deps HandlerDeps
}

func NewEmailHandler(deps HandlerDeps) ColumnHandler {
	return &EmailHandler{deps: deps}
}

func (h *EmailHandler) Anonymize(value any) string {
	normalized := h.deps.Normalizer.Normalize(value)
	localPart, domain, found := strings.Cut(normalized, "@")
	if !found {
		return ""
	}

	var segments []string
	for _, s := range strings.Split(localPart, ".") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	switch len(segments) {
	case 0:
		return ""
	case 1:
		first := h.deps.firstName(segments[0])
		return strings.ToLower(first) + "@" + domain
	default:
		first := h.deps.firstName(segments[0])
		last := h.deps.lastName(segments[len(segments)-1])
		return strings.ToLower(first) + "." + strings.ToLower(last) + "@" + domain
	}
}

// IdHandler replaces identifiers with a fixed-length base-36 code.
type IdHandler struct {
	deps HandlerDeps
}

func NewIdHandler(deps HandlerDeps) ColumnHandler {
	return &IdHandler{deps: deps}
}

func (h *IdHandler) Anonymize(value any) string {
	normalized := h.deps.IdentifierNormalizer.Normalize(value)
	if normalized == "" {
		return ""
	}
	return EncodeBase36(h.deps.Hasher.HashToInt(normalized), ID_LENGTH)
}

// EncodeBase36 renders the n low-order base-36 digits of x, least significant
// digit first: result[0] is x mod 36.
func EncodeBase36(x *big.Int, n int) string {
	base := big.NewInt(int64(len(ID_ALPHABET)))
	rest := new(big.Int).Set(x)
	digit := new(big.Int)
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		rest.DivMod(rest, base, digit)
		sb.WriteByte(ID_ALPHABET[digit.Int64()])
	}
	return sb.String()
}

// MiscHandler redacts free text.
type MiscHandler struct{}

func NewMiscHandler(HandlerDeps) ColumnHandler {
	return MiscHandler{}
}

func (MiscHandler) Anonymize(any) string {
	return ""
}

func (d HandlerDeps) firstName(token string) string {
	return d.Identities.FirstName(d.Hasher.HashToInt(token))
}

func (d HandlerDeps) lastName(token string) string {
	return d.Identities.LastName(d.Hasher.HashToInt(token))
}
