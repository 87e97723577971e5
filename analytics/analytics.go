// Package analytics derives viewing statistics from diary entries: weekly
// counts, streaks, pace and projection, highlights, taste labels, and
// busiest-day facts.
//
// Every function is pure over its inputs. Computations relative to the
// calendar take an explicit "today" so results are deterministic in tests;
// nothing here reads the process clock.
package analytics

import (
	"sort"
	"time"

	"github.com/unnonueve/deathrace/record"
)

// Weekly counts entries in two half-open, non-overlapping 7-day windows:
// this week is [today-7d, ∞), last week is [today-14d, today-7d).
func Weekly(entries []record.DiaryEntry, today time.Time) record.WeeklyFilmCount {
	thisWeekFrom := today.AddDate(0, 0, -7)
	lastWeekFrom := thisWeekFrom.AddDate(0, 0, -7)

	var wc record.WeeklyFilmCount
	for _, e := range entries {
		switch {
		case !e.Date.Before(thisWeekFrom):
			wc.ThisWeek++
		case !e.Date.Before(lastWeekFrom):
			wc.LastWeek++
		}
	}
	return wc
}

// Streak walks the distinct entry dates in ascending order. A gap of
// exactly one calendar day extends the current streak, any larger gap
// resets it to 1. Duplicate same-day entries neither extend nor reset,
// which is why dates are de-duplicated first. The current streak is the
// run ending at the most recent entry.
func Streak(entries []record.DiaryEntry) record.FilmStreak {
	dates := distinctDates(entries)
	if len(dates) == 0 {
		return record.FilmStreak{}
	}

	current, longest := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return record.FilmStreak{Current: current, Longest: longest}
}

// distinctDates returns the unique entry dates sorted ascending.
func distinctDates(entries []record.DiaryEntry) []time.Time {
	seen := make(map[time.Time]bool, len(entries))
	var dates []time.Time
	for _, e := range entries {
		if !seen[e.Date] {
			seen[e.Date] = true
			dates = append(dates, e.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Rate is films-this-year divided by the 1-based day of year. Day of year
// is never zero, so the division is always safe.
func Rate(thisYear int, today time.Time) float64 {
	return float64(thisYear) / float64(today.YearDay())
}

// DaysInYear follows the Gregorian leap rule.
func DaysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

// Projection extrapolates a daily rate over the full year.
func Projection(rate float64, year int) float64 {
	return rate * float64(DaysInYear(year))
}

// BusiestDay returns the calendar date with the most entries, reported
// only when that count is at least 2. The source site's behaviour on
// ties is unspecified; here ties break to the earliest date so results
// are deterministic.
func BusiestDay(entries []record.DiaryEntry) (record.DayCount, bool) {
	counts := make(map[time.Time]int, len(entries))
	for _, e := range entries {
		counts[e.Date]++
	}

	var best record.DayCount
	for date, n := range counts {
		if n > best.Count || (n == best.Count && date.Before(best.Date)) {
			best = record.DayCount{Date: date, Count: n}
		}
	}
	if best.Count < 2 {
		return record.DayCount{}, false
	}
	return best, true
}
