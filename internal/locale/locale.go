// Package locale holds the month-name vocabularies used to strip calendar
// words out of recurring ledger descriptions.
package locale

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MonthTable lists, per calendar month (index 0 = January), the words that
// denote that month in one language: full names and accepted abbreviations.
type MonthTable struct {
	Tag    string       `yaml:"tag"`
	Months [12][]string `yaml:"months"`
}

// Words returns every variant of the table in a flat list, longest first so
// that alternations built from it prefer "september" over "sep".
func (t MonthTable) Words() []string {
	var words []string
	for _, variants := range t.Months {
		words = append(words, variants...)
	}
	sort.SliceStable(words, func(i, j int) bool {
		return len(words[i]) > len(words[j])
	})
	return words
}

// MonthOf returns the month index a word denotes, or -1.
func (t MonthTable) MonthOf(word string) int {
	word = strings.ToLower(strings.TrimSpace(word))
	for i, variants := range t.Months {
		for _, v := range variants {
			if v == word {
				return i
			}
		}
	}
	return -1
}

var builtin = map[string]MonthTable{
	"nl": {Tag: "nl", Months: [12][]string{
		{"januari", "jan"},
		{"februari", "feb"},
		{"maart", "mrt", "mar"},
		{"april", "apr"},
		{"mei"},
		{"juni", "jun"},
		{"juli", "jul"},
		{"augustus", "aug"},
		{"september", "sept", "sep"},
		{"oktober", "okt", "oct"},
		{"november", "nov"},
		{"december", "dec"},
	}},
	"en": {Tag: "en", Months: [12][]string{
		{"january", "jan"},
		{"february", "feb"},
		{"march", "mar"},
		{"april", "apr"},
		{"may"},
		{"june", "jun"},
		{"july", "jul"},
		{"august", "aug"},
		{"september", "sept", "sep"},
		{"october", "oct"},
		{"november", "nov"},
		{"december", "dec"},
	}},
	"de": {Tag: "de", Months: [12][]string{
		{"januar", "jänner", "jan"},
		{"februar", "feb"},
		{"märz", "maerz", "mär", "mrz"},
		{"april", "apr"},
		{"mai"},
		{"juni", "jun"},
		{"juli", "jul"},
		{"august", "aug"},
		{"september", "sept", "sep"},
		{"oktober", "okt"},
		{"november", "nov"},
		{"dezember", "dez"},
	}},
	"fr": {Tag: "fr", Months: [12][]string{
		{"janvier", "janv"},
		{"février", "fevrier", "févr", "fevr"},
		{"mars"},
		{"avril", "avr"},
		{"mai"},
		{"juin"},
		{"juillet", "juil"},
		{"août", "aout"},
		{"septembre", "sept"},
		{"octobre", "oct"},
		{"novembre", "nov"},
		{"décembre", "decembre", "déc", "dec"},
	}},
}

// Registry resolves locale tags to month tables. The zero value is not
// usable; call NewRegistry.
type Registry struct {
	tables map[string]MonthTable
}

// NewRegistry returns a registry preloaded with the built-in locales
// (nl, en, de, fr).
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[string]MonthTable, len(builtin))}
	for tag, table := range builtin {
		r.tables[tag] = table
	}
	return r
}

// Register adds or replaces a table. Words are lower-cased and may denote
// only one month; repeats within a month are dropped.
func (r *Registry) Register(table MonthTable) error {
	tag := strings.ToLower(strings.TrimSpace(table.Tag))
	if tag == "" {
		return fmt.Errorf("month table has no tag")
	}
	normalized := MonthTable{Tag: tag}
	for i, variants := range table.Months {
		if len(variants) == 0 {
			return fmt.Errorf("locale %s: month %d has no names", tag, i+1)
		}
		for _, v := range variants {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				return fmt.Errorf("locale %s: month %d has an empty name", tag, i+1)
			}
			switch m := normalized.MonthOf(v); {
			case m == i:
				continue
			case m >= 0:
				return fmt.Errorf("locale %s: %q names both month %d and month %d", tag, v, m+1, i+1)
			}
			normalized.Months[i] = append(normalized.Months[i], v)
		}
	}
	r.tables[tag] = normalized
	return nil
}

// Get returns the table for a tag.
func (r *Registry) Get(tag string) (MonthTable, error) {
	table, ok := r.tables[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return MonthTable{}, fmt.Errorf("unknown locale %q (known: %s)", tag, strings.Join(r.Tags(), ", "))
	}
	return table, nil
}

// Tags returns the registered locale tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.tables))
	for tag := range r.tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// localeFile is the on-disk layout of a locale YAML file.
type localeFile struct {
	Locales []MonthTable `yaml:"locales"`
}

// LoadFile registers every table found in a YAML file of the form
//
//	locales:
//	  - tag: es
//	    months:
//	      - [enero, ene]
//	      - [febrero, feb]
//	      ...
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user supplied locale file
	if err != nil {
		return fmt.Errorf("error reading locale file: %w", err)
	}

	var file localeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing locale file %s: %w", path, err)
	}
	if len(file.Locales) == 0 {
		return fmt.Errorf("locale file %s defines no locales", path)
	}

	for _, table := range file.Locales {
		if err := r.Register(table); err != nil {
			return fmt.Errorf("locale file %s: %w", path, err)
		}
	}
	return nil
}
