package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
	UI     UIConfig     `yaml:"ui"`
}

// SourceConfig says where the knowledge base comes from: a local File, or
// Path inside a GitHub Repo.
type SourceConfig struct {
	File    string `yaml:"file"`
	Repo    string `yaml:"repo"` // owner/repo
	Path    string `yaml:"path"`
	Ref     string `yaml:"ref"`
	Workers int    `yaml:"workers"`
}

// CacheConfig bounds the cache of remotely fetched documents.
type CacheConfig struct {
	Dir    string `yaml:"dir"`
	SizeMB int    `yaml:"size_mb"`
	TTL    string `yaml:"ttl"` // e.g. "1h", "24h"
}

// UIConfig picks the glamour style of the issue pane ("auto", "dark",
// "light", "notty", ...).
type UIConfig struct {
	MarkdownStyle string `yaml:"markdown_style"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Source: SourceConfig{
			Path:    "kb.yaml",
			Workers: 4,
		},
		Cache: CacheConfig{
			Dir:    filepath.Join(os.TempDir(), "kbsearch", "docs"),
			SizeMB: 50,
			TTL:    "1h",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			MarkdownStyle: "auto",
		},
	}
}

// Dir returns the configuration directory path (~/.config/kbsearch).
// It can be overridden with the KBSEARCH_CONFIG_DIR environment variable.
func Dir() string {
	if d := os.Getenv("KBSEARCH_CONFIG_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "kbsearch")
	}
	return filepath.Join(home, ".config", "kbsearch")
}

// File returns the path to the config.yaml file.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config at path. If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// IsRemote reports whether the knowledge base is read from GitHub.
func (c Config) IsRemote() bool {
	return c.Source.File == "" && c.Source.Repo != ""
}

// Owner and name of the source repository.
func (c Config) RepoParts() (string, string) {
	parts := strings.SplitN(c.Source.Repo, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

func (c Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

func (c Config) Validate() error {
	if c.Source.File == "" && c.Source.Repo == "" {
		return fmt.Errorf("a knowledge base is required (use --file or -R owner/repo)")
	}
	if c.Source.Repo != "" {
		owner, repo := c.RepoParts()
		if owner == "" || repo == "" {
			return fmt.Errorf("repo must be in owner/repo format")
		}
		if c.Source.Path == "" {
			return fmt.Errorf("a path inside %s is required (use --path)", c.Source.Repo)
		}
	}
	if c.Cache.SizeMB < 1 {
		return fmt.Errorf("cache size_mb must be at least 1, got %d", c.Cache.SizeMB)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
