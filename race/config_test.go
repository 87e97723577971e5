package race

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	// WHAT: YAML values land in the config and unset fields default.
	path := filepath.Join(t.TempDir(), "deathrace.yaml")
	content := `
cache_dir: /var/cache/deathrace
journal_path: journal.db
stealth: true
fetch:
  base_url: https://example.test
  max_pages: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CacheDir != "/var/cache/deathrace" {
		t.Errorf("cache dir: got %q", cfg.CacheDir)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("cache ttl default: got %v", cfg.CacheTTL)
	}
	if !cfg.Stealth || cfg.JournalPath != "journal.db" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.Fetch.BaseURL != "https://example.test" || cfg.Fetch.MaxPages != 5 {
		t.Errorf("fetch: got %+v", cfg.Fetch)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cache_dir: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}
