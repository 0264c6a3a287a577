// Package dates normalizes heterogeneous date strings into the canonical
// YYYY-MM-DD form used everywhere else in the application.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted year range for testing dates.
const (
	minYear = 1900
	maxYear = 2100
)

// Normalize parses a raw date string and returns its canonical YYYY-MM-DD
// form. The second return value is false when the input is not a usable date.
//
// Accepted separators are "/", "-" and ".". A 4-digit leading field is taken
// as a year-first date. Otherwise the trailing field is the year (2-digit
// years below 50 map to the 2000s, the rest to the 1900s) and the leading two
// fields are disambiguated as month/day: a field above 12 must be the day;
// when both could be the month, month-first wins (US convention).
func Normalize(raw string) (string, bool) {
	parts := splitParts(strings.TrimSpace(raw))
	if parts == nil {
		return "", false
	}

	a, b, c := parts[0], parts[1], parts[2]

	var year, month, day int
	switch {
	case len(a) == 4:
		// Year-first form: YYYY-[M]M-[D]D.
		if len(b) > 2 || len(c) > 2 {
			return "", false
		}
		year, month, day = atoi(a), atoi(b), atoi(c)
	case len(a) <= 2 && len(b) <= 2 && (len(c) == 2 || len(c) == 4):
		year = atoi(c)
		if len(c) == 2 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		first, second := atoi(a), atoi(b)
		if first > 12 && second <= 12 {
			day, month = first, second
		} else {
			// Covers the unambiguous month-first case and the ambiguous
			// both-fit case, which defaults to month-first.
			month, day = first, second
		}
	default:
		return "", false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < minYear || year > maxYear {
		return "", false
	}

	// Reject triples that pass the field checks but are not real calendar
	// dates, such as February 30.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// splitParts splits on the accepted separators and returns exactly three
// non-empty all-digit fields, or nil.
func splitParts(s string) []string {
	if s == "" {
		return nil
	}
	norm := strings.NewReplacer("/", "-", ".", "-").Replace(s)
	parts := strings.Split(norm, "-")
	if len(parts) != 3 {
		return nil
	}
	for _, p := range parts {
		if p == "" || !allDigits(p) {
			return nil
		}
	}
	return parts
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
