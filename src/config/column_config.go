package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yugabyte/chameleon/src/anon"
)

var ErrInvalidColumnConfig = errors.New("invalid column config")

// SKIP marks a column that is deliberately left unchanged. Such entries are
// dropped on load.
const SKIP = "skip"

// ColumnConfigFile is the saved form of a column mapping:
//
//	{"column_config": {"FirstName": "first_name", "Email": "email"}, "locale": "en_US"}
type ColumnConfigFile struct {
	ColumnConfig map[string]string `json:"column_config" yaml:"column_config"`
	Locale       string            `json:"locale,omitempty" yaml:"locale,omitempty"`
}

func LoadColumnConfig(path string) (*ColumnConfigFile, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidColumnConfig, path, err)
	}
	cfg, err := ParseColumnConfig(bs, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded column config from %q: %d columns", path, len(cfg.ColumnConfig))
	return cfg, nil
}

// ParseColumnConfig decodes a JSON (or YAML) column config. Column names keep
// their case; type names are trimmed and lower-cased.
func ParseColumnConfig(bs []byte, asYAML bool) (*ColumnConfigFile, error) {
	cfg := &ColumnConfigFile{}
	var err error
	if asYAML {
		err = yaml.Unmarshal(bs, cfg)
	} else {
		err = json.Unmarshal(bs, cfg)
	}
	if err != nil {
		return nil, goerrors.Errorf("%w: %v", ErrInvalidColumnConfig, err)
	}

	return NewColumnConfig(cfg.ColumnConfig, cfg.Locale)
}

// NewColumnConfig validates a column -> type mapping, as loaded from a file or
// built interactively. Skipped columns are dropped.
func NewColumnConfig(mapping map[string]string, locale string) (*ColumnConfigFile, error) {
	columns := make(map[string]string, len(mapping))
	for column, columnType := range mapping {
		columnType = strings.ToLower(strings.TrimSpace(columnType))
		switch columnType {
		case "":
			return nil, goerrors.Errorf("%w: column %q has no type", ErrInvalidColumnConfig, column)
		case SKIP:
			continue
		}
		columns[column] = columnType
	}
	if len(columns) == 0 {
		return nil, goerrors.Errorf("%w: no columns to anonymize", ErrInvalidColumnConfig)
	}
	return &ColumnConfigFile{ColumnConfig: columns, Locale: strings.TrimSpace(locale)}, nil
}

func (c *ColumnConfigFile) Columns() map[string]anon.ColumnType {
	columns := make(map[string]anon.ColumnType, len(c.ColumnConfig))
	for column, columnType := range c.ColumnConfig {
		columns[column] = anon.ColumnType(columnType)
	}
	return columns
}

// SortedColumns returns the configured column names in sorted order.
func (c *ColumnConfigFile) SortedColumns() []string {
	columns := make([]string, 0, len(c.ColumnConfig))
	for column := range c.ColumnConfig {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func SaveColumnConfig(path string, cfg *ColumnConfigFile) error {
	var bs []byte
	var err error
	if isYAML(path) {
		bs, err = yaml.Marshal(cfg)
	} else {
		bs, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal column config: %w", err)
	}
	if err := os.WriteFile(path, bs, 0644); err != nil {
		return fmt.Errorf("write column config %s: %w", path, err)
	}
	log.Infof("saved column config to %q", path)
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
