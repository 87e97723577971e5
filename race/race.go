// Package race orchestrates the full pipeline for one or two users:
// fetch the profile and diary documents, extract typed records, and run
// the analytics pass. Users are processed sequentially; the only shared
// state between them is the read-only page cache.
package race

import (
	"context"
	"log/slog"
	"time"

	"github.com/unnonueve/deathrace/analytics"
	"github.com/unnonueve/deathrace/extract"
	"github.com/unnonueve/deathrace/fetch"
	"github.com/unnonueve/deathrace/fetchlog"
	"github.com/unnonueve/deathrace/pagecache"
	"github.com/unnonueve/deathrace/record"
)

// UserReport is the full outbound record set for one user. When Found is
// false the profile was unreachable and every figure holds its zero
// value, so the presentation layer renders a single "no data" state
// without branching on failure kinds.
type UserReport struct {
	User        string                 `json:"user"`
	Found       bool                   `json:"found"`
	FilmCount   record.FilmCount       `json:"film_count"`
	Entries     []record.DiaryEntry    `json:"entries"` // newest first
	Weekly      record.WeeklyFilmCount `json:"weekly"`
	Streak      record.FilmStreak      `json:"streak"`
	Rate        float64                `json:"rate"`
	Projection  float64                `json:"projection"`
	Highlights  []string               `json:"highlights"`
	Profile     record.UserProfile     `json:"profile"`
	TasteLabels []string               `json:"taste_labels"`
	BusiestDay  *record.DayCount       `json:"busiest_day,omitempty"`
	Accumulated []record.DayCount      `json:"accumulated"`
}

// Verdict compares the two users' standings.
type Verdict struct {
	// Gap is user1's total minus user2's total.
	Gap int `json:"gap"`
	// Leader is the user with the higher total, empty on a tie.
	Leader string `json:"leader"`
	// CanCatchUp is true when the trailing user's daily rate exceeds the
	// leader's; CatchUpDays then estimates the days to draw level.
	CanCatchUp  bool    `json:"can_catch_up"`
	CatchUpDays float64 `json:"catch_up_days"`
	// WeeklyLeader won the last 7 days, empty on a tie.
	WeeklyLeader string `json:"weekly_leader"`
}

// RaceReport is the outbound record set for a two-user comparison.
type RaceReport struct {
	User1       *UserReport            `json:"user1"`
	User2       *UserReport            `json:"user2"`
	Verdict     Verdict                `json:"verdict"`
	CommonFilms []analytics.CommonFilm `json:"common_films"`
}

// Service runs the pipeline.
type Service struct {
	cfg       Config
	fetcher   *fetch.Fetcher
	extractor *extract.Extractor
	journal   *fetchlog.Store
	browser   *fetch.Browser
	logger    *slog.Logger
	now       func() time.Time
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithStrategy overrides the markup extraction strategy.
func WithStrategy(s extract.Strategy) ServiceOption {
	return func(svc *Service) { svc.extractor = extract.New(s, svc.logger) }
}

// New creates a race Service.
func New(cfg Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		cfg:       cfg,
		extractor: extract.New(nil, logger),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if cfg.JournalPath != "" {
		journal, err := fetchlog.Open(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		svc.journal = journal
	}

	cache := pagecache.New(cfg.CacheDir, cfg.CacheTTL, logger)
	var fetchOpts []fetch.Option
	if cfg.Stealth {
		svc.browser = fetch.NewBrowser(logger)
		fetchOpts = append(fetchOpts, fetch.WithChallengeSolver(svc.browser))
	}
	if svc.journal != nil {
		fetchOpts = append(fetchOpts, fetch.WithObserver(svc.recordAttempt))
	}
	svc.fetcher = fetch.New(cfg.Fetch, cache, svc.extractor, logger, fetchOpts...)

	return svc, nil
}

// Close releases the journal and the stealth browser if they were opened.
func (s *Service) Close() error {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// FetchHistory returns a user's journalled fetch attempts, newest first.
// Nil when journalling is disabled.
func (s *Service) FetchHistory(ctx context.Context, user string, limit int) ([]*fetchlog.Entry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.History(ctx, user, limit)
}

// Snapshot runs fetch → extract → analyze for one user. today anchors
// every calendar-relative figure; feminine selects the taste-label
// gender variant. An unreachable profile degrades to a zero-value report
// with Found=false — never an error.
func (s *Service) Snapshot(ctx context.Context, user string, today time.Time, feminine bool) *UserReport {
	report := &UserReport{User: user}

	profileHTML, err := s.fetcher.Profile(ctx, user)
	if err != nil {
		s.logger.Warn("race: profile unavailable", "user", user, "error", err)
		return report
	}
	report.Found = true
	report.FilmCount = s.extractor.FilmCount(profileHTML)
	report.Profile = s.extractor.Profile(profileHTML)

	pages := s.fetcher.DiaryPages(ctx, user, today.Year())
	report.Entries = s.extractor.DiaryEntries(pages)

	report.Weekly = analytics.Weekly(report.Entries, today)
	report.Streak = analytics.Streak(report.Entries)
	report.Rate = analytics.Rate(report.FilmCount.ThisYear, today)
	report.Projection = analytics.Projection(report.Rate, today.Year())
	report.Highlights = analytics.Highlights(report.Entries)
	report.TasteLabels = analytics.Labels(report.Entries, today, feminine)
	report.Accumulated = analytics.Accumulated(report.Entries, today)
	if busiest, ok := analytics.BusiestDay(report.Entries); ok {
		report.BusiestDay = &busiest
	}

	s.logger.Info("race: snapshot complete", "user", user,
		"found", report.Found, "entries", len(report.Entries),
		"total", report.FilmCount.Total)
	return report
}

// Compare runs two sequential snapshots and derives the head-to-head
// verdict and common-films table.
func (s *Service) Compare(ctx context.Context, user1, user2 string, today time.Time, feminine1, feminine2 bool) *RaceReport {
	r1 := s.Snapshot(ctx, user1, today, feminine1)
	r2 := s.Snapshot(ctx, user2, today, feminine2)

	report := &RaceReport{User1: r1, User2: r2}
	report.Verdict = verdict(r1, r2)
	if r1.Found && r2.Found {
		report.CommonFilms = analytics.CommonFilms(r1.Entries, r2.Entries, 10)
	}
	return report
}

func verdict(r1, r2 *UserReport) Verdict {
	v := Verdict{Gap: r1.FilmCount.Total - r2.FilmCount.Total}

	switch {
	case v.Gap > 0:
		v.Leader = r1.User
		v.CatchUpDays, v.CanCatchUp = analytics.CatchUp(v.Gap, r1.Rate, r2.Rate)
	case v.Gap < 0:
		v.Leader = r2.User
		v.CatchUpDays, v.CanCatchUp = analytics.CatchUp(-v.Gap, r2.Rate, r1.Rate)
	}

	switch {
	case r1.Weekly.ThisWeek > r2.Weekly.ThisWeek:
		v.WeeklyLeader = r1.User
	case r2.Weekly.ThisWeek > r1.Weekly.ThisWeek:
		v.WeeklyLeader = r2.User
	}
	return v
}

// recordAttempt journals one fetch attempt. Journal failures only cost
// observability, so they are logged and swallowed.
func (s *Service) recordAttempt(a fetch.Attempt) {
	entry := &fetchlog.Entry{
		User:         a.User,
		Kind:         a.Kind,
		Page:         a.Page,
		URL:          a.URL,
		StatusCode:   a.StatusCode,
		Source:       a.Source,
		ErrorMessage: a.Error,
		DurationMs:   a.Duration.Milliseconds(),
		FetchedAt:    s.now().UnixMilli(),
	}
	if err := s.journal.Insert(context.Background(), entry); err != nil {
		s.logger.Warn("race: fetch journal write failed", "error", err)
	}
}
