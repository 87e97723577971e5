package analytics

import (
	"testing"
	"time"

	"github.com/unnonueve/deathrace/record"
)

func TestHighlights_FullDiary(t *testing.T) {
	// WHAT: A diary with valid years and ratings produces the seven
	// superlative facts in fixed order.
	d := record.Day(2026, time.March, 1)
	entries := []record.DiaryEntry{
		{Date: d, Title: "Old One", ReleaseYear: "1941", Rating: 9},
		{Date: d, Title: "New One", ReleaseYear: "2024", Rating: 4},
		{Date: d, Title: "Middle", ReleaseYear: "1999"},
	}
	got := Highlights(entries)
	want := []string{
		"Oldest film: 'Old One' (1941)",
		"Newest film: 'New One' (2024)",
		"Highest rated: 'Old One' (1941) with 9/10",
		"Lowest rated: 'New One' (2024) with 4/10",
		"Total films logged: 3",
		"Rated films: 2",
		"Average rating: 6.5",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %v", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHighlights_NoValidYears(t *testing.T) {
	// WHAT: Non-numeric release years fall back to a descriptive line
	// instead of a bogus oldest/newest pick.
	d := record.Day(2026, time.March, 1)
	entries := []record.DiaryEntry{
		{Date: d, Title: "A", ReleaseYear: "Unknown", Rating: 7},
	}
	got := Highlights(entries)
	if got[0] != "No valid release years found." {
		t.Errorf("oldest: got %q", got[0])
	}
	if got[1] != "No valid release years found." {
		t.Errorf("newest: got %q", got[1])
	}
}

func TestHighlights_NoRatedFilms(t *testing.T) {
	// WHAT: An all-unrated diary falls back on the rating facts and the
	// average line.
	d := record.Day(2026, time.March, 1)
	entries := []record.DiaryEntry{
		{Date: d, Title: "A", ReleaseYear: "2000"},
	}
	got := Highlights(entries)
	if got[2] != "No films have been rated." || got[3] != "No films have been rated." {
		t.Errorf("rating lines: got %q, %q", got[2], got[3])
	}
	if got[5] != "Rated films: 0" {
		t.Errorf("rated count: got %q", got[5])
	}
	if got[6] != "No average rating (no rated films)." {
		t.Errorf("average: got %q", got[6])
	}
}

func TestHighlights_Empty(t *testing.T) {
	// WHAT: No entries means no highlight lines at all.
	if got := Highlights(nil); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
