package analytics

import (
	"fmt"
	"strconv"

	"github.com/unnonueve/deathrace/record"
)

// Highlights builds superlative facts about a diary: oldest/newest film
// by release year, highest/lowest rated, and totals. Entries whose
// release year is not all digits are excluded from the year facts; when
// none qualify, a descriptive fallback replaces the figure. Returns nil
// for an empty diary.
func Highlights(entries []record.DiaryEntry) []string {
	if len(entries) == 0 {
		return nil
	}

	oldestStr := "No valid release years found."
	newestStr := "No valid release years found."
	var oldest, newest *record.DiaryEntry
	for i := range entries {
		year, err := strconv.Atoi(entries[i].ReleaseYear)
		if err != nil || !allDigits(entries[i].ReleaseYear) {
			continue
		}
		if oldest == nil || year < mustYear(oldest) {
			oldest = &entries[i]
		}
		if newest == nil || year > mustYear(newest) {
			newest = &entries[i]
		}
	}
	if oldest != nil {
		oldestStr = fmt.Sprintf("Oldest film: '%s' (%s)", oldest.Title, oldest.ReleaseYear)
		newestStr = fmt.Sprintf("Newest film: '%s' (%s)", newest.Title, newest.ReleaseYear)
	}

	highestStr := "No films have been rated."
	lowestStr := "No films have been rated."
	var rated int
	var ratingSum int
	var highest, lowest *record.DiaryEntry
	for i := range entries {
		if !entries[i].Rated() {
			continue
		}
		rated++
		ratingSum += entries[i].Rating
		if highest == nil || entries[i].Rating > highest.Rating {
			highest = &entries[i]
		}
		if lowest == nil || entries[i].Rating < lowest.Rating {
			lowest = &entries[i]
		}
	}
	if highest != nil {
		highestStr = fmt.Sprintf("Highest rated: '%s' (%s) with %d/10",
			highest.Title, highest.ReleaseYear, highest.Rating)
		lowestStr = fmt.Sprintf("Lowest rated: '%s' (%s) with %d/10",
			lowest.Title, lowest.ReleaseYear, lowest.Rating)
	}

	avgStr := "No average rating (no rated films)."
	if rated > 0 {
		avgStr = fmt.Sprintf("Average rating: %.1f", float64(ratingSum)/float64(rated))
	}

	return []string{
		oldestStr,
		newestStr,
		highestStr,
		lowestStr,
		fmt.Sprintf("Total films logged: %d", len(entries)),
		fmt.Sprintf("Rated films: %d", rated),
		avgStr,
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func mustYear(e *record.DiaryEntry) int {
	y, _ := strconv.Atoi(e.ReleaseYear)
	return y
}
