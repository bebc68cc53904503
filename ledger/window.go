package ledger

import (
	"sort"
	"time"
)

// YearsSpanned returns every calendar year in the inclusive range
// covered by the ledger, one report being generated per year. An empty
// ledger collapses to the current year.
func YearsSpanned(entries []Entry) []int {
	if len(entries) == 0 {
		return []int{time.Now().Year()}
	}

	minYear := entries[0].Date.Year()
	maxYear := minYear
	for _, entry := range entries[1:] {
		year := entry.Date.Year()
		if year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	years := make([]int, 0, maxYear-minYear+1)
	for year := minYear; year <= maxYear; year++ {
		years = append(years, year)
	}
	return years
}

// Window returns the entries falling inside [from, to] inclusive,
// sorted ascending by date. The input is left untouched and re-sorted
// defensively rather than assumed ordered.
func Window(entries []Entry, from, to time.Time) []Entry {
	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Date.Before(from) || entry.Date.After(to) {
			continue
		}
		filtered = append(filtered, entry)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.Before(filtered[j].Date)
	})
	return filtered
}

// YearRange returns the [Jan 1, Dec 31] window for a calendar year.
func YearRange(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	to = time.Date(year, time.December, 31, 0, 0, 0, 0, time.Local)
	return from, to
}
