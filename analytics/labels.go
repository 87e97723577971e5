package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/unnonueve/deathrace/record"
)

// labelID identifies one taste label independent of its rendered text.
type labelID int

const (
	labelGenerous labelID = iota // average rating >= 7.5
	labelHarsh                   // average rating < 5
	labelClassic                 // median release year < 2000
	labelMarathon                // longest streak >= 7
	labelNostalgic               // rewatch count >= 3
	labelEnthusiast              // liked fraction >= 0.4 with >= 5 entries
	labelUnstoppable             // >= 5 entries this week
)

// labelText maps {label, grammatical gender} to the rendered string.
// Index 0 is masculine, 1 feminine.
var labelText = map[labelID][2]string{
	labelGenerous:    {"generoso", "generosa"},
	labelHarsh:       {"crítico duro", "crítica dura"},
	labelClassic:     {"cinéfilo clásico", "cinéfila clásica"},
	labelMarathon:    {"maratoniano", "maratoniana"},
	labelNostalgic:   {"nostálgico", "nostálgica"},
	labelEnthusiast:  {"entusiasta", "entusiasta"},
	labelUnstoppable: {"imparable", "imparable"},
}

const maxLabels = 3

// Labels classifies a diary with at most three short taste labels,
// evaluated in fixed priority order with independently gated rules. The
// feminine flag selects the grammatical-gender variant.
func Labels(entries []record.DiaryEntry, today time.Time, feminine bool) []string {
	var ids []labelID

	avg, hasAvg := averageRating(entries)
	switch {
	case hasAvg && avg >= 7.5:
		ids = append(ids, labelGenerous)
	case hasAvg && avg < 5:
		ids = append(ids, labelHarsh)
	}

	if median, ok := medianReleaseYear(entries); ok && median < 2000 {
		ids = append(ids, labelClassic)
	}

	if Streak(entries).Longest >= 7 {
		ids = append(ids, labelMarathon)
	}

	var rewatches, liked int
	for _, e := range entries {
		if e.Rewatch {
			rewatches++
		}
		if e.Liked {
			liked++
		}
	}
	if rewatches >= 3 {
		ids = append(ids, labelNostalgic)
	}
	if len(entries) >= 5 && float64(liked)/float64(len(entries)) >= 0.4 {
		ids = append(ids, labelEnthusiast)
	}

	if Weekly(entries, today).ThisWeek >= 5 {
		ids = append(ids, labelUnstoppable)
	}

	if len(ids) > maxLabels {
		ids = ids[:maxLabels]
	}

	gender := 0
	if feminine {
		gender = 1
	}
	var labels []string
	for _, id := range ids {
		labels = append(labels, labelText[id][gender])
	}
	return labels
}

// averageRating returns the mean over rated entries only.
func averageRating(entries []record.DiaryEntry) (float64, bool) {
	var sum, n int
	for _, e := range entries {
		if e.Rated() {
			sum += e.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// medianReleaseYear is the middle element of the ascending digit-only
// release years, taking the lower middle on even counts.
func medianReleaseYear(entries []record.DiaryEntry) (int, bool) {
	var years []int
	for _, e := range entries {
		if !allDigits(e.ReleaseYear) {
			continue
		}
		y, err := strconv.Atoi(e.ReleaseYear)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return 0, false
	}
	sort.Ints(years)
	return years[(len(years)-1)/2], true
}
