package anon

import "errors"

// ColumnType is the declared meaning of a column. It selects the handler the
// column's cells are routed to.
type ColumnType string

const (
	FIRST_NAME         ColumnType = "first_name"
	LAST_NAME          ColumnType = "last_name"
	FULL_NAME          ColumnType = "full_name"
	FULL_NAME_INVERTED ColumnType = "full_name_inverted"
	EMAIL              ColumnType = "email"
	ID                 ColumnType = "id"
	MISC               ColumnType = "misc"
)

const (
	DEFAULT_LOCALE = "en_US"
	SALT_SIZE      = 32 // bytes, for generated salts
	ID_LENGTH      = 8
	ID_ALPHABET    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Configuration errors. They are returned before any data is touched.
var (
	ErrUnknownColumnType = errors.New("unknown column type")
	ErrUnsupportedLocale = errors.New("unsupported locale")
	ErrMalformedSalt     = errors.New("malformed salt")
)

// interface to be implemented by any new column handler
type ColumnHandler interface {
	// Anonymize never fails: degenerate input (nil, empty, malformed) yields "".
	Anonymize(value any) string
}
