package anon

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/yugabyte/chameleon/src/names"
	"github.com/yugabyte/chameleon/src/tabular"
)

const STATELESS_CHUNK_SIZE = 4096

type Config struct {
	// column name, as it appears in the source header -> column type
	ColumnConfig map[string]ColumnType
	// empty means a fresh random salt
	Salt     []byte
	Locale   string
	Registry *Registry
	// workers for columns of stateless types; 0 or 1 processes them inline
	ParallelJobs int
}

// ProgressFunc is called after each column of a table has been processed.
type ProgressFunc func(table string, column string, cells int)

// TableAnonymizer binds a column configuration to handler instances sharing one
// Hasher and one IdentityGenerator, and applies them to tables. It is meant to
// be used for a single run and discarded afterwards, taking its identity
// cache with it.
type TableAnonymizer struct {
	columnConfig map[string]ColumnType
	registry     *Registry
	hasher       *Hasher
	identities   *IdentityGenerator
	parallelJobs int
	progress     ProgressFunc

	// column type -> handler; columns of the same type share a handler
	handlers map[ColumnType]ColumnHandler
}

func NewTableAnonymizer(cfg Config) (*TableAnonymizer, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	// fail on configuration before generating anything
	for column, columnType := range cfg.ColumnConfig {
		if !registry.IsRegistered(columnType) {
			return nil, fmt.Errorf("column %q: %w: %q", column, ErrUnknownColumnType, columnType)
		}
	}

	locale := cfg.Locale
	if locale == "" {
		locale = DEFAULT_LOCALE
	}
	space, err := names.Lookup(locale)
	if err != nil {
		if errors.Is(err, names.ErrUnknownLocale) {
			return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedLocale, locale, names.Supported())
		}
		return nil, err
	}

	hasher, err := NewHasher(cfg.Salt)
	if err != nil {
		return nil, fmt.Errorf("error creating hasher: %w", err)
	}

	a := &TableAnonymizer{
		columnConfig: lo.Assign(cfg.ColumnConfig),
		registry:     registry,
		hasher:       hasher,
		identities:   NewIdentityGenerator(space, seedFromSalt(hasher.salt)),
		parallelJobs: cfg.ParallelJobs,
		handlers:     make(map[ColumnType]ColumnHandler),
	}

	deps := HandlerDeps{
		Hasher:               a.hasher,
		Normalizer:           NewStringNormalizer(),
		IdentifierNormalizer: NewIdentifierNormalizer(),
		Identities:           a.identities,
	}
	for _, columnType := range lo.Uniq(lo.Values(a.columnConfig)) {
		handler, err := registry.build(columnType, deps)
		if err != nil {
			return nil, err
		}
		a.handlers[columnType] = handler
	}

	log.Infof("table anonymizer ready: %d configured columns, locale %s, salt fingerprint %s",
		len(a.columnConfig), space.Locale, hasher.SaltFingerprint())
	return a, nil
}

// seedFromSalt keeps name sampling a function of the salt, never of process
// state. Salts shorter than 8 bytes are zero padded on the right.
func seedFromSalt(salt []byte) uint64 {
	var b [8]byte
	copy(b[:], salt)
	return binary.BigEndian.Uint64(b[:])
}

func (a *TableAnonymizer) SetProgressFunc(fn ProgressFunc) {
	a.progress = fn
}

func (a *TableAnonymizer) Salt() []byte {
	return a.hasher.Salt()
}

func (a *TableAnonymizer) SaltHex() string {
	return a.hasher.SaltHex()
}

func (a *TableAnonymizer) SaltFingerprint() string {
	return a.hasher.SaltFingerprint()
}

func (a *TableAnonymizer) Locale() string {
	return a.identities.Locale()
}

func (a *TableAnonymizer) IdentityStats() IdentityStats {
	return a.identities.Stats()
}

// Handler returns the handler bound to column, if the column is configured.
func (a *TableAnonymizer) Handler(column string) (ColumnHandler, bool) {
	columnType, ok := a.columnConfig[column]
	if !ok {
		return nil, false
	}
	return a.handlers[columnType], true
}

// Handlers maps every configured column to its handler.
func (a *TableAnonymizer) Handlers() map[string]ColumnHandler {
	return lo.MapValues(a.columnConfig, func(columnType ColumnType, _ string) ColumnHandler {
		return a.handlers[columnType]
	})
}

// AnonymizeValue anonymizes one cell of column. Cells of unconfigured columns
// are returned unchanged with false.
func (a *TableAnonymizer) AnonymizeValue(column string, value any) (any, bool) {
	handler, ok := a.Handler(column)
	if !ok {
		return value, false
	}
	return handler.Anonymize(value), true
}

// AnonymizeTable returns an anonymized copy of t. Configured columns present in
// t have every cell replaced, other columns are copied verbatim, and configured
// columns missing from t are ignored. Row count and order are preserved.
func (a *TableAnonymizer) AnonymizeTable(t *tabular.Table) *tabular.Table {
	out := t.Clone()
	// header order, so identity assignment is the same on every run
	for idx, column := range out.Header {
		columnType, ok := a.columnConfig[column]
		if !ok {
			continue
		}
		handler := a.handlers[columnType]
		if a.parallelJobs > 1 && a.registry.IsStateless(columnType) {
			a.anonymizeColumnParallel(out, idx, handler)
		} else {
			anonymizeColumnRange(out.Rows, idx, handler, 0, len(out.Rows))
		}
		log.Infof("anonymized column %q (%s) of %q: %d cells", column, columnType, out.Name, len(out.Rows))
		if a.progress != nil {
			a.progress(out.Name, column, len(out.Rows))
		}
	}
	return out
}

// AnonymizeWorkbook anonymizes every sheet in order with the same handlers, so
// identities are consistent across sheets. Cell styles carry over unchanged.
func (a *TableAnonymizer) AnonymizeWorkbook(w *tabular.Workbook) *tabular.Workbook {
	out := &tabular.Workbook{Format: w.Format, CellStyles: w.CellStyles, Date1904: w.Date1904}
	for _, sheet := range w.Sheets {
		out.Sheets = append(out.Sheets, a.AnonymizeTable(sheet))
	}
	return out
}

func (a *TableAnonymizer) anonymizeColumnParallel(t *tabular.Table, idx int, handler ColumnHandler) {
	p := pool.New().WithMaxGoroutines(a.parallelJobs)
	for start := 0; start < len(t.Rows); start += STATELESS_CHUNK_SIZE {
		start := start
		end := min(start+STATELESS_CHUNK_SIZE, len(t.Rows))
		p.Go(func() {
			anonymizeColumnRange(t.Rows, idx, handler, start, end)
		})
	}
	p.Wait()
}

// anonymizeColumnRange rewrites cell idx of rows[start:end]. Rows too short to
// have the cell are left as they are.
func anonymizeColumnRange(rows [][]any, idx int, handler ColumnHandler, start, end int) {
	for i := start; i < end; i++ {
		if idx < len(rows[i]) {
			rows[i][idx] = handler.Anonymize(rows[i][idx])
		}
	}
}
