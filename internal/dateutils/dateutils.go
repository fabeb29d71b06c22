// Package dateutils parses the posting dates found in ledger exports.
package dateutils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Common date layouts found in bank and bookkeeping exports.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutDutch    = "02-01-2006"
	DateLayoutCompact  = "20060102"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// Layouts lists the formats ParseDate tries, in order. Day-first layouts come
// before month-first ones, so "03/04/2024" is read as 3 April.
var Layouts = []string{
	DateLayoutISO,
	DateLayoutDutch,
	DateLayoutEuropean,
	DateLayoutCompact,
	DateLayoutFull,
	DateLayoutISO + "T15:04:05Z07:00",
	DateLayoutISO + "T15:04:05",
	"02/01/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006",
	"2006/01/02",
	"01/02/2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses a date string using the first matching layout and returns
// the date with the time of day stripped.
func ParseDate(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range Layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// YearsOf returns the distinct years of the given dates in ascending order.
func YearsOf(dates []time.Time) []int {
	seen := make(map[int]bool)
	var years []int
	for _, d := range dates {
		if !seen[d.Year()] {
			seen[d.Year()] = true
			years = append(years, d.Year())
		}
	}
	sort.Ints(years)
	return years
}
