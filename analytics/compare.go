package analytics

import (
	"sort"
	"time"

	"github.com/unnonueve/deathrace/record"
)

// Accumulated builds the cumulative entry count per day from January 1 of
// today's year through today, inclusive. The series always spans the full
// range so two users' lines share an x-axis.
func Accumulated(entries []record.DiaryEntry, today time.Time) []record.DayCount {
	start := record.Day(today.Year(), time.January, 1)

	daily := make(map[time.Time]int)
	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(today) {
			continue
		}
		daily[e.Date]++
	}

	var series []record.DayCount
	total := 0
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		total += daily[d]
		series = append(series, record.DayCount{Date: d, Count: total})
	}
	return series
}

// CommonFilm is a film both users logged, with each user's average rating
// over their watches and the combined average. A user's average is only
// meaningful when Rated is true; Combined requires at least one side rated.
type CommonFilm struct {
	Title    string  `json:"title"`
	Year     string  `json:"year"`
	Avg1     float64 `json:"avg_1"`
	Rated1   bool    `json:"rated_1"`
	Avg2     float64 `json:"avg_2"`
	Rated2   bool    `json:"rated_2"`
	Combined float64 `json:"combined"`
	HasScore bool    `json:"has_score"`
}

// CommonFilms intersects two diaries on (lowercased title, release year),
// including unrated watches, and returns at most limit films ordered by
// combined average descending. Films with no rating on either side sink
// to the bottom; ties break on title so the order is deterministic.
func CommonFilms(entries1, entries2 []record.DiaryEntry, limit int) []CommonFilm {
	type tally struct {
		title string // first-seen display casing
		sum   int
		n     int
	}

	collect := func(entries []record.DiaryEntry) map[record.FilmKey]*tally {
		m := make(map[record.FilmKey]*tally)
		for _, e := range entries {
			key := e.Key()
			t, ok := m[key]
			if !ok {
				t = &tally{title: collapseTitle(e.Title)}
				m[key] = t
			}
			if e.Rated() {
				t.sum += e.Rating
				t.n++
			}
		}
		return m
	}

	watched1 := collect(entries1)
	watched2 := collect(entries2)

	var common []CommonFilm
	for key, t1 := range watched1 {
		t2, ok := watched2[key]
		if !ok {
			continue
		}
		cf := CommonFilm{Title: t1.title, Year: key.Year}
		if t1.n > 0 {
			cf.Avg1 = float64(t1.sum) / float64(t1.n)
			cf.Rated1 = true
		}
		if t2.n > 0 {
			cf.Avg2 = float64(t2.sum) / float64(t2.n)
			cf.Rated2 = true
		}
		switch {
		case cf.Rated1 && cf.Rated2:
			cf.Combined = (cf.Avg1 + cf.Avg2) / 2
			cf.HasScore = true
		case cf.Rated1:
			cf.Combined = cf.Avg1
			cf.HasScore = true
		case cf.Rated2:
			cf.Combined = cf.Avg2
			cf.HasScore = true
		}
		common = append(common, cf)
	}

	sort.Slice(common, func(i, j int) bool {
		a, b := common[i], common[j]
		if a.HasScore != b.HasScore {
			return a.HasScore
		}
		if a.Combined != b.Combined {
			return a.Combined > b.Combined
		}
		return a.Title < b.Title
	})

	if limit > 0 && len(common) > limit {
		common = common[:limit]
	}
	return common
}

func collapseTitle(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}

// CatchUp estimates how many days the trailing user needs to close a
// lead of gap films, given both daily rates. Only meaningful when the
// trailing user is actually faster; otherwise ok is false and the gap
// will hold or widen.
func CatchUp(gap int, leaderRate, trailerRate float64) (days float64, ok bool) {
	if gap <= 0 || trailerRate <= leaderRate {
		return 0, false
	}
	return float64(gap) / (trailerRate - leaderRate), true
}
