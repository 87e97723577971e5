package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/unnonueve/deathrace/record"
)

// Letterboxd is the extraction rule set for the currently-live markup.
type Letterboxd struct{}

// Name implements Strategy.
func (Letterboxd) Name() string { return "letterboxd-2025" }

// FilmCount implements Strategy. The statistics block lists label/value
// pairs; only "Films" (with thousands separators) and "This year" matter,
// anything else is ignored.
func (Letterboxd) FilmCount(doc *html.Node) (record.FilmCount, []error) {
	var fc record.FilmCount
	var errs []error

	stats := querySelector(doc, "div.profile-stats")
	if stats == nil {
		return fc, errs
	}
	for _, h4 := range querySelectorAll(stats, "h4.profile-statistic") {
		value := querySelector(h4, "span.value")
		definition := querySelector(h4, "span.definition")
		if value == nil || definition == nil {
			continue
		}
		label := strings.TrimSpace(collectText(definition))
		text := strings.TrimSpace(collectText(value))

		switch label {
		case "Films":
			n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
			if err != nil {
				errs = append(errs, fmt.Errorf("films value %q: %w", text, err))
				continue
			}
			fc.Total = n
		case "This year":
			n, err := strconv.Atoi(text)
			if err != nil {
				errs = append(errs, fmt.Errorf("this-year value %q: %w", text, err))
				continue
			}
			fc.ThisYear = n
		}
	}
	return fc, errs
}

// DiaryEntries implements Strategy. One row per logged viewing; a row
// whose date cannot be resolved is dropped, every other missing fragment
// falls back to a default instead of dropping the row.
func (Letterboxd) DiaryEntries(doc *html.Node) []record.DiaryEntry {
	var entries []record.DiaryEntry
	for _, row := range querySelectorAll(doc, "tr.diary-entry-row") {
		date, ok := rowDate(row)
		if !ok {
			continue
		}

		title := "Unknown"
		if h := querySelector(row, "h3.headline-3"); h != nil {
			title = collapseSpace(collectText(h))
		}

		releaseYear := "Unknown"
		if td := querySelector(row, "td.td-released"); td != nil {
			releaseYear = strings.TrimSpace(collectText(td))
		}

		entries = append(entries, record.DiaryEntry{
			Date:        date,
			Title:       title,
			ReleaseYear: releaseYear,
			Rating:      rowRating(row),
			Liked:       querySelector(row, "td.td-like .icon-liked") != nil,
			Rewatch:     rowRewatch(row),
		})
	}
	return entries
}

// rowDate resolves the entry date from the day cell's link, whose last
// three path segments are year, month, day
// (e.g. /user/films/diary/for/2025/02/06/).
func rowDate(row *html.Node) (time.Time, bool) {
	day := querySelector(row, "td.td-day")
	if day == nil {
		return time.Time{}, false
	}
	anchor := querySelector(day, "a")
	if anchor == nil {
		return time.Time{}, false
	}
	parts := strings.Split(strings.Trim(getAttr(anchor, "href"), "/"), "/")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	y, errY := strconv.Atoi(parts[len(parts)-3])
	m, errM := strconv.Atoi(parts[len(parts)-2])
	d, errD := strconv.Atoi(parts[len(parts)-1])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	date := record.Day(y, time.Month(m), d)
	// time.Date normalises out-of-range components; a mismatch after the
	// round trip means the path segments were not a real calendar date.
	if date.Year() != y || date.Month() != time.Month(m) || date.Day() != d {
		return time.Time{}, false
	}
	return date, true
}

// rowRating reads the numeric rating field unless the row carries the
// not-rated marker. A raw 0, an unparsable value, or anything outside
// the 1-10 scale normalises to 0 (absent).
func rowRating(row *html.Node) int {
	if hasClass(row, "not-rated") {
		return 0
	}
	input := querySelector(row, "input.rateit-field")
	if input == nil {
		return 0
	}
	v, err := strconv.Atoi(getAttr(input, "value"))
	if err != nil || v < 1 || v > 10 {
		return 0
	}
	return v
}

// rowRewatch: presence of the rewatch cell without the "off" status
// marker signals a rewatch.
func rowRewatch(row *html.Node) bool {
	td := querySelector(row, "td.td-rewatch")
	return td != nil && !hasClass(td, "icon-status-off")
}

// Profile implements Strategy.
func (Letterboxd) Profile(doc *html.Node) record.UserProfile {
	var p record.UserProfile
	if img := querySelector(doc, ".avatar.-large img"); img != nil {
		p.AvatarURL = getAttr(img, "src")
	}
	for _, img := range querySelectorAll(doc, "#favourites li img") {
		if title := strings.TrimSpace(getAttr(img, "alt")); title != "" {
			p.FavouriteFilms = append(p.FavouriteFilms, title)
		}
	}
	return p
}

// HasNextPage implements Strategy. All of: a pagination block exists, it
// contains a "next" link, and the link's parent is not marked disabled.
func (Letterboxd) HasNextPage(doc *html.Node) bool {
	pagination := querySelector(doc, "div.pagination")
	if pagination == nil {
		return false
	}
	next := querySelector(pagination, "a.next")
	if next == nil {
		return false
	}
	if next.Parent != nil && hasClass(next.Parent, "paginate-disabled") {
		return false
	}
	return true
}
