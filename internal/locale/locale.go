// Package locale holds the table of language codes the search index
// recognizes and the normalization applied to language: directives.
package locale

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table is a set of supported language codes.
type Table struct {
	codes map[string]bool
}

// NewTable builds a table from an explicit code list.
func NewTable(codes []string) *Table {
	t := &Table{codes: make(map[string]bool, len(codes))}
	for _, c := range codes {
		t.codes[c] = true
	}
	return t
}

// Default returns the built-in supported locale set.
func Default() *Table {
	return NewTable(defaultCodes)
}

// localesFile is the on-disk override format: a single yaml list of codes.
type localesFile struct {
	Locales []string `yaml:"locales"`
}

// LoadFile reads a yaml locale list, replacing the built-in set.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locales file: %w", err)
	}

	var f localesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse locales file: %w", err)
	}
	if len(f.Locales) == 0 {
		return nil, fmt.Errorf("locales file %s lists no locales", path)
	}

	return NewTable(f.Locales), nil
}

// Has reports whether code is a supported locale, matched exactly.
func (t *Table) Has(code string) bool {
	return t.codes[code]
}

// Len returns the number of supported codes.
func (t *Table) Len() int {
	return len(t.codes)
}

// Normalize maps a user-typed language term onto a supported code.
// It tries, in order: the term as given, the term lowercased, and the
// primary subtag (text before the first '-' or '_') lowercased. If none
// of those is supported the term is returned verbatim, so the filter
// still matches whatever the index stored.
func (t *Table) Normalize(term string) string {
	if t.Has(term) {
		return term
	}

	lower := strings.ToLower(term)
	if t.Has(lower) {
		return lower
	}

	if parts := strings.FieldsFunc(term, func(r rune) bool {
		return r == '-' || r == '_'
	}); len(parts) > 0 {
		if primary := strings.ToLower(parts[0]); t.Has(primary) {
			return primary
		}
	}

	return term
}
