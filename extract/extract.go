// Package extract maps raw profile and diary markup to typed records.
//
// The source site ships versioned, semi-structured markup that drifts over
// time, so the extraction rules live behind a per-version Strategy. The
// Extractor tolerates missing sub-elements: a row without a resolvable
// date is dropped, other missing fragments fall back to documented
// defaults, and a field that fails numeric conversion keeps its zero value
// and is logged as a recoverable error. No function here performs I/O.
package extract

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/unnonueve/deathrace/record"
)

// Strategy is one markup version's extraction rule set. Future markup
// drift is handled by a new implementation, not a rewrite.
type Strategy interface {
	// Name identifies the markup version (for logs).
	Name() string
	// FilmCount reads the profile statistics block. Fields that fail to
	// parse keep their zero value; each failure is reported in errs.
	FilmCount(doc *html.Node) (fc record.FilmCount, errs []error)
	// DiaryEntries reads all diary rows in source order (newest first).
	DiaryEntries(doc *html.Node) []record.DiaryEntry
	// Profile reads avatar URL and favourite films.
	Profile(doc *html.Node) record.UserProfile
	// HasNextPage reports whether the pagination block advertises a
	// usable "next" link.
	HasNextPage(doc *html.Node) bool
}

// Extractor applies a Strategy to raw document text.
type Extractor struct {
	strategy Strategy
	logger   *slog.Logger
}

// New creates an Extractor. A nil strategy selects the current live
// markup version.
func New(strategy Strategy, logger *slog.Logger) *Extractor {
	if strategy == nil {
		strategy = Letterboxd{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategy: strategy, logger: logger}
}

// parse never fails outright: html.Parse recovers from malformed input,
// and an error (only possible on reader failure) yields an empty document.
func (e *Extractor) parse(raw string) *html.Node {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		doc, _ = html.Parse(strings.NewReader(""))
	}
	return doc
}

// FilmCount extracts aggregate counts from a profile document.
// Parse-field failures are logged and leave the count at zero.
func (e *Extractor) FilmCount(raw string) record.FilmCount {
	fc, errs := e.strategy.FilmCount(e.parse(raw))
	for _, err := range errs {
		e.logger.Error("extract: film count", "markup", e.strategy.Name(), "error", err)
	}
	return fc
}

// DiaryEntries extracts diary rows from one or more concatenated diary
// pages, preserving source order (newest first).
func (e *Extractor) DiaryEntries(pages []string) []record.DiaryEntry {
	var entries []record.DiaryEntry
	for _, raw := range pages {
		entries = append(entries, e.strategy.DiaryEntries(e.parse(raw))...)
	}
	return entries
}

// Profile extracts avatar URL and favourite films from a profile document.
func (e *Extractor) Profile(raw string) record.UserProfile {
	return e.strategy.Profile(e.parse(raw))
}

// HasNextPage reports whether a diary page advertises a further page.
func (e *Extractor) HasNextPage(raw string) bool {
	return e.strategy.HasNextPage(e.parse(raw))
}
