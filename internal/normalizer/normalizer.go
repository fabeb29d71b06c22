// Package normalizer turns free-text ledger descriptions into stable grouping
// keys, so that "Huur januari 2024" and "Huur februari 2024" land in the same
// recurring series.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"fjacquet/ledger-gaps/internal/locale"
)

const (
	// KeySeparator joins the counterparty and the cleaned description.
	KeySeparator = " | "

	minCleanLength = 3
	fallbackLength = 15
)

var (
	// Unanchored: years glued to a month ("jan2024") must go as well.
	yearPattern = regexp.MustCompile(`20[2-3]\d`)
	wordPattern = regexp.MustCompile(`\p{L}+`)
)

// Normalizer strips calendar noise (years, month names) from descriptions.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	months  map[string]struct{}
	locales []string
}

// New builds a Normalizer whose month vocabulary is the union of the given tables.
func New(tables ...locale.MonthTable) *Normalizer {
	n := &Normalizer{months: make(map[string]struct{})}
	for _, table := range tables {
		n.locales = append(n.locales, table.Tag)
		for _, word := range table.Words() {
			n.months[strings.ToLower(word)] = struct{}{}
		}
	}
	return n
}

// Locales returns the tags of the month tables in use.
func (n *Normalizer) Locales() []string {
	out := make([]string, len(n.locales))
	copy(out, n.locales)
	return out
}

// Key returns the grouping key for a posting.
func (n *Normalizer) Key(counterparty, description string) string {
	return counterparty + KeySeparator + n.CleanDescription(description)
}

// CleanDescription lower-cases the description, removes years 2020-2039 and
// whole-word month names, keeps only letters and whitespace and collapses
// spaces. Results shorter than three characters fall back to the first
// fifteen characters of the untouched description.
func (n *Normalizer) CleanDescription(description string) string {
	cleaned := strings.ToLower(description)
	cleaned = yearPattern.ReplaceAllString(cleaned, " ")
	cleaned = n.removeMonths(cleaned)
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return r
		}
		return -1
	}, cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if len([]rune(cleaned)) < minCleanLength {
		return fallback(description)
	}
	return cleaned
}

func (n *Normalizer) removeMonths(s string) string {
	if len(n.months) == 0 {
		return s
	}
	return wordPattern.ReplaceAllStringFunc(s, func(word string) string {
		if _, ok := n.months[word]; ok {
			return " "
		}
		return word
	})
}

func fallback(description string) string {
	runes := []rune(description)
	if len(runes) > fallbackLength {
		runes = runes[:fallbackLength]
	}
	return string(runes)
}
