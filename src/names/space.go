/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package names

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7/data"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

var ErrUnknownLocale = errors.New("no name space for locale")

// Space is the pool of synthetic first and last names for one locale.
type Space struct {
	Locale string
	First  []string
	Last   []string
}

//go:embed data
var localeData embed.FS

var (
	spaces   = map[string]*Space{}
	spacesMu sync.Mutex
)

// CanonicalLocale turns "en_US", "en-us" or "en" into the "en_US" form used
// as the key of a name space.
func CanonicalLocale(locale string) (string, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", fmt.Errorf("%w: empty locale", ErrUnknownLocale)
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnknownLocale, locale, err)
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return "", fmt.Errorf("%w: %q has no region", ErrUnknownLocale, locale)
	}
	return base.String() + "_" + region.String(), nil
}

// Lookup returns the name space of locale. Spaces are built once per process
// and shared read-only.
func Lookup(locale string) (*Space, error) {
	key, err := CanonicalLocale(locale)
	if err != nil {
		return nil, err
	}

	spacesMu.Lock()
	defer spacesMu.Unlock()
	if s, ok := spaces[key]; ok {
		return s, nil
	}
	s, err := loadSpace(key)
	if err != nil {
		return nil, err
	}
	spaces[key] = s
	return s, nil
}

// Supported lists the locales a Space can be built for.
func Supported() []string {
	locales := []string{"en_US"}
	entries, err := localeData.ReadDir("data")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				locales = append(locales, e.Name())
			}
		}
	}
	sort.Strings(locales)
	return locales
}

func loadSpace(key string) (*Space, error) {
	if key == "en_US" {
		return newSpace(key, data.Person["first"], data.Person["last"])
	}
	first, err := readNames(key, "first.txt")
	if err != nil {
		return nil, err
	}
	last, err := readNames(key, "last.txt")
	if err != nil {
		return nil, err
	}
	return newSpace(key, first, last)
}

func readNames(locale string, file string) ([]string, error) {
	bs, err := localeData.ReadFile(path.Join("data", locale, file))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocale, locale)
	}
	return strings.Split(string(bs), "\n"), nil
}

func newSpace(locale string, first []string, last []string) (*Space, error) {
	s := &Space{
		Locale: locale,
		First:  cleanPool(first),
		Last:   cleanPool(last),
	}
	if len(s.First) == 0 || len(s.Last) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty name pool", ErrUnknownLocale, locale)
	}
	return s, nil
}

// cleanPool trims entries and drops blanks and duplicates, keeping the first
// occurrence so the pool order is stable.
func cleanPool(pool []string) []string {
	trimmed := lo.Map(pool, func(n string, _ int) string { return strings.TrimSpace(n) })
	return lo.Uniq(lo.Filter(trimmed, func(n string, _ int) bool { return n != "" }))
}
