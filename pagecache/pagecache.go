// Package pagecache persists raw fetched documents as one file per key
// under a cache directory. Freshness is judged solely by the file's
// modification time against a TTL; an expired entry remains readable
// through the stale path, used as a fallback after a failed live fetch.
package pagecache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store is a file-backed document cache. Keys must be deterministic so
// repeated runs for the same user address the same entry.
type Store struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger

	// now is overridable for freshness tests.
	now func() time.Time
}

// New creates a Store rooted at dir with the given TTL. The directory is
// created on first write, not here.
func New(dir string, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns the cached content for key if it exists and is fresh
// (age <= TTL). The second return is false on miss or expiry.
func (s *Store) Get(key string) (string, bool) {
	path := filepath.Join(s.dir, key)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	age := s.now().Sub(info.ModTime())
	if age > s.ttl {
		s.logger.Info("pagecache: expired", "key", key, "age", age, "ttl", s.ttl)
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	s.logger.Info("pagecache: hit", "key", key, "age", age)
	return string(data), true
}

// GetStale returns the cached content for key regardless of TTL. Only
// meant as a fallback immediately after a live fetch has failed.
func (s *Store) GetStale(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return "", false
	}
	s.logger.Info("pagecache: stale fallback", "key", key)
	return string(data), true
}

// Put writes content under key, creating the cache directory on demand.
// The write goes through a temp file and rename so readers never observe
// a partial document. A failure is non-fatal to the caller: the fetched
// content stays usable in memory for the current run.
func (s *Store) Put(key, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("pagecache: mkdir %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, key+".tmp*")
	if err != nil {
		return fmt.Errorf("pagecache: temp file: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("pagecache: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("pagecache: close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("pagecache: rename %s: %w", key, err)
	}
	s.logger.Info("pagecache: stored", "key", key, "bytes", len(content))
	return nil
}

// ProfileKey is the cache key for a user's profile document.
func ProfileKey(user string) string {
	return fmt.Sprintf("%s_profile.html", user)
}

// DiaryKey is the cache key for one page of a user's diary for a year.
func DiaryKey(user string, year, page int) string {
	return fmt.Sprintf("%s_diary_%d_page_%d.html", user, year, page)
}
