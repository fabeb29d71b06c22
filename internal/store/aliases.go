package store

import (
	"sort"
	"strings"
)

// Aliases resolves counterparty spellings to their canonical name. Matching
// ignores case and repeated whitespace.
type Aliases struct {
	lookup map[string]string
}

// NewAliases builds a resolver from canonical name → variants. Each
// canonical name also resolves to itself. A spelling claimed more than once
// goes to a canonical name that matches it, otherwise to the first canonical
// name in sorted order, so the result does not depend on map order.
func NewAliases(mappings map[string][]string) *Aliases {
	canonicals := make([]string, 0, len(mappings))
	for canonical := range mappings {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	a := &Aliases{lookup: make(map[string]string)}
	claim := func(spelling, canonical string) {
		if _, taken := a.lookup[foldName(spelling)]; !taken {
			a.lookup[foldName(spelling)] = canonical
		}
	}
	for _, canonical := range canonicals {
		claim(canonical, canonical)
	}
	for _, canonical := range canonicals {
		for _, variant := range mappings[canonical] {
			claim(variant, canonical)
		}
	}
	return a
}

// Resolve returns the canonical name for counterparty, or counterparty
// unchanged when no alias matches. A nil *Aliases resolves nothing.
func (a *Aliases) Resolve(counterparty string) string {
	if a == nil {
		return counterparty
	}
	if canonical, ok := a.lookup[foldName(counterparty)]; ok {
		return canonical
	}
	return counterparty
}

// Len is the number of known spellings.
func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.lookup)
}

func foldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
