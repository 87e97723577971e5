// Package record defines the immutable data model shared by the fetch,
// extract, and analytics layers: aggregate film counts, per-entry diary
// records, derived weekly/streak figures, and profile metadata.
//
// All values are built fresh for each analytics run from fetched-or-cached
// documents and are never mutated after construction.
package record

import (
	"strings"
	"time"
)

// FilmCount holds the aggregate counters from a profile's statistics block.
type FilmCount struct {
	Total    int `json:"total"`
	ThisYear int `json:"this_year"`
}

// WeeklyFilmCount holds entry counts for two non-overlapping 7-day windows
// relative to a reference day.
type WeeklyFilmCount struct {
	LastWeek int `json:"last_week"`
	ThisWeek int `json:"this_week"`
}

// FilmStreak holds the trailing and longest runs of consecutive calendar
// days that each contain at least one diary entry.
type FilmStreak struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// DiaryEntry is one logged viewing. Rating uses a 1-10 scale where
// half-stars are consecutive integers; 0 means not rated.
type DiaryEntry struct {
	Date        time.Time `json:"entry_date"`
	Title       string    `json:"title"`
	ReleaseYear string    `json:"release_year"` // may be non-numeric, e.g. "Unknown"
	Rating      int       `json:"rating"`
	Liked       bool      `json:"liked"`
	Rewatch     bool      `json:"is_rewatch"`
}

// Rated reports whether the entry carries a rating.
func (e DiaryEntry) Rated() bool { return e.Rating >= 1 && e.Rating <= 10 }

// FilmKey identifies a film across users for set operations: lowercased
// trimmed title plus the release-year string.
type FilmKey struct {
	Title string `json:"title"`
	Year  string `json:"year"`
}

// Key returns the entry's film identity.
func (e DiaryEntry) Key() FilmKey {
	return FilmKey{
		Title: strings.ToLower(strings.TrimSpace(e.Title)),
		Year:  strings.TrimSpace(e.ReleaseYear),
	}
}

// UserProfile holds profile metadata extracted alongside the statistics.
type UserProfile struct {
	AvatarURL      string   `json:"avatar_url"`
	FavouriteFilms []string `json:"favourite_films"`
}

// DayCount pairs a calendar date with an entry count.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Day builds a calendar date at UTC midnight. All entry dates are stored
// this way so date arithmetic stays exact across the codebase.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Stars renders a 1-10 rating as a five-star string with an optional
// half star, e.g. 9 -> "★★★★½". Unrated (0) renders as "-".
func Stars(rating int) string {
	if rating < 1 || rating > 10 {
		return "-"
	}
	s := strings.Repeat("★", rating/2)
	if rating%2 == 1 {
		s += "½"
	}
	return s
}
