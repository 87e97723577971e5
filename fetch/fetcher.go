// Package fetch retrieves profile and diary documents from the film-diary
// site through the page cache. Every document goes: fresh cache, then
// network, then stale cache as a last resort after a failed live fetch.
//
// The network path is a plain HTTP GET with browser-like headers; when the
// origin answers with an anti-automation challenge status and a challenge
// solver is configured, the fetch escalates to a stealth headless browser.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/unnonueve/deathrace/extract"
	"github.com/unnonueve/deathrace/pagecache"
)

// ErrUnavailable means the document could not be fetched and no cached
// copy exists. Distinct from an empty document: callers must branch on
// this before deriving any statistic.
var ErrUnavailable = errors.New("fetch: document unavailable")

// Config configures the fetcher.
type Config struct {
	// BaseURL of the source site. Default: "https://letterboxd.com".
	BaseURL string `yaml:"base_url"`
	// UserAgent sent with requests. The origin rejects non-browser
	// identification, so the default mimics a desktop Firefox.
	UserAgent string `yaml:"user_agent"`
	// Timeout per HTTP request. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes caps a response body. Default: 10MB.
	MaxBytes int64 `yaml:"max_bytes"`
	// PageDelay is the courtesy pause between consecutive diary page
	// fetches. Cache hits skip it. Default: 1s.
	PageDelay time.Duration `yaml:"page_delay"`
	// MaxPages bounds diary pagination. Default: 50.
	MaxPages int `yaml:"max_pages"`
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://letterboxd.com"
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.PageDelay <= 0 {
		c.PageDelay = time.Second
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 50
	}
}

// ChallengeSolver fetches a document through means that pass anti-bot
// checks a plain HTTP client fails (see Browser).
type ChallengeSolver interface {
	HTML(ctx context.Context, url string) (string, error)
}

// Attempt describes one document fetch for observability sinks.
type Attempt struct {
	User       string
	Kind       string // "profile" | "diary"
	Page       int    // 0 for profile
	URL        string
	StatusCode int
	Source     string // "cache" | "network" | "browser" | "stale" | "none"
	Error      string
	Duration   time.Duration
}

// Fetcher retrieves documents with cache consultation before and after
// each network call.
type Fetcher struct {
	cfg       Config
	client    *http.Client
	cache     *pagecache.Store
	extractor *extract.Extractor
	solver    ChallengeSolver
	logger    *slog.Logger
	observe   func(Attempt)
	sleep     func(time.Duration)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithChallengeSolver enables browser escalation on challenge statuses.
func WithChallengeSolver(s ChallengeSolver) Option {
	return func(f *Fetcher) { f.solver = s }
}

// WithObserver registers a sink receiving one Attempt per document fetch.
func WithObserver(fn func(Attempt)) Option {
	return func(f *Fetcher) { f.observe = fn }
}

// New creates a Fetcher.
func New(cfg Config, cache *pagecache.Store, extractor *extract.Extractor, logger *slog.Logger, opts ...Option) *Fetcher {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		cache:     cache,
		extractor: extractor,
		logger:    logger,
		observe:   func(Attempt) {},
		sleep:     time.Sleep,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Profile fetches a user's profile document. Returns ErrUnavailable when
// the live fetch fails and no cached copy (fresh or stale) exists —
// callers must treat that as "user not found / unreachable", not as a
// profile with zero films.
func (f *Fetcher) Profile(ctx context.Context, user string) (string, error) {
	url := fmt.Sprintf("%s/%s/", f.cfg.BaseURL, user)
	out, err := f.document(ctx, Attempt{User: user, Kind: "profile", URL: url}, pagecache.ProfileKey(user))
	if err != nil {
		return "", err
	}
	return out.body, nil
}

// DiaryPages fetches a user's diary pages for a year starting at page 1,
// in order. Pagination stops on: a failed fetch with no stale fallback,
// no pagination block, no "next" link, or a disabled "next" link — all
// normal end-of-data signals, so the pages collected so far are returned.
// A courtesy delay separates consecutive network fetches.
func (f *Fetcher) DiaryPages(ctx context.Context, user string, year int) []string {
	var pages []string
	for page := 1; page <= f.cfg.MaxPages; page++ {
		url := fmt.Sprintf("%s/%s/films/diary/for/%d/page/%d/", f.cfg.BaseURL, user, year, page)
		out, err := f.document(ctx,
			Attempt{User: user, Kind: "diary", Page: page, URL: url},
			pagecache.DiaryKey(user, year, page))
		if err != nil {
			break
		}
		pages = append(pages, out.body)

		if !f.extractor.HasNextPage(out.body) {
			break
		}
		if !out.cached {
			f.sleep(f.cfg.PageDelay)
		}
	}
	return pages
}

type outcome struct {
	body   string
	cached bool // fresh or stale cache — no network call was billed
}

// document resolves one cache key: fresh cache, then network (with
// optional browser escalation), then stale cache.
func (f *Fetcher) document(ctx context.Context, a Attempt, key string) (outcome, error) {
	start := time.Now()
	done := func(o outcome, err error) (outcome, error) {
		a.Duration = time.Since(start)
		if err != nil {
			a.Error = err.Error()
		}
		f.observe(a)
		return o, err
	}

	if body, ok := f.cache.Get(key); ok {
		a.Source = "cache"
		return done(outcome{body: body, cached: true}, nil)
	}

	body, status, err := f.get(ctx, a.URL)
	a.StatusCode = status
	if err == nil && isChallenge(status) && f.solver != nil {
		f.logger.Info("fetch: challenge status, escalating to browser",
			"url", a.URL, "status", status)
		if html, berr := f.solver.HTML(ctx, a.URL); berr == nil {
			a.Source = "browser"
			f.store(key, html)
			return done(outcome{body: html}, nil)
		} else {
			f.logger.Warn("fetch: browser escalation failed", "url", a.URL, "error", berr)
		}
	}
	if err != nil || status != http.StatusOK {
		if body, ok := f.cache.GetStale(key); ok {
			a.Source = "stale"
			return done(outcome{body: body, cached: true}, nil)
		}
		a.Source = "none"
		if err != nil {
			return done(outcome{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, a.URL, err))
		}
		return done(outcome{}, fmt.Errorf("%w: %s: http %d", ErrUnavailable, a.URL, status))
	}

	a.Source = "network"
	f.store(key, body)
	return done(outcome{body: body}, nil)
}

// get issues one browser-like GET and reads the body.
func (f *Fetcher) get(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch: get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("fetch: read body: %w", err)
	}
	return string(body), resp.StatusCode, nil
}

// store persists a fetched document; a cache write failure only costs the
// next run a refetch, so it is logged and swallowed.
func (f *Fetcher) store(key, body string) {
	if err := f.cache.Put(key, body); err != nil {
		f.logger.Warn("fetch: cache not persisted", "key", key, "error", err)
	}
}

// isChallenge recognises the statuses the origin's anti-automation layer
// answers with.
func isChallenge(status int) bool {
	return status == http.StatusForbidden || status == http.StatusServiceUnavailable
}
