package race

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unnonueve/deathrace/fetch"
)

// Config configures a race Service. Cache directory and TTL default from
// the environment in the command, not here: the values arrive explicit.
type Config struct {
	// CacheDir holds one file per fetched document.
	CacheDir string `yaml:"cache_dir"`
	// CacheTTL is the freshness window for cached documents.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// JournalPath is the SQLite fetch journal; empty disables journalling.
	JournalPath string `yaml:"journal_path"`
	// Stealth enables headless-browser escalation on anti-bot challenges.
	Stealth bool `yaml:"stealth"`

	// Fetch settings.
	Fetch fetch.Config `yaml:"fetch"`
}

func (c *Config) defaults() {
	if c.CacheDir == "" {
		c.CacheDir = "cache"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("race: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("race: parse config: %w", err)
	}
	cfg.defaults()
	return &cfg, nil
}
