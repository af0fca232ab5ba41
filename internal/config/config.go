package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog configures the subtitle catalog endpoint.
type Catalog struct {
	APIURL         string `toml:"api_url"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Subtitles configures language selection defaults.
type Subtitles struct {
	Languages   string `toml:"languages"`
	DownloadAll bool   `toml:"download_all"`
}

// History configures the download journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Logging configures diagnostic output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Catalog   Catalog   `toml:"catalog"`
	Subtitles Subtitles `toml:"subtitles"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// RequestedLanguages splits the comma-separated language string into ordered
// tokens. Tokens are used verbatim: candidate matching is exact and
// case-sensitive, so no trimming or case folding happens here.
func (c *Config) RequestedLanguages() []string {
	return strings.Split(c.Subtitles.Languages, ",")
}

// RequestTimeout returns the catalog HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Catalog.RequestTimeout) * time.Second
}

// HistoryDBPath returns the location of the journal database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.History.Dir, "history.db")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the expanded per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subfetch/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. The
// boolean reports whether a file was actually found; when none exists the
// defaults are returned.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Catalog.APIURL) == "" {
		c.Catalog.APIURL = defaultAPIURL
	}
	if strings.TrimSpace(c.Catalog.UserAgent) == "" {
		c.Catalog.UserAgent = defaultUserAgent
	}
	if c.Catalog.RequestTimeout == 0 {
		c.Catalog.RequestTimeout = defaultRequestTimeout
	}
	if c.Subtitles.Languages == "" {
		c.Subtitles.Languages = defaultLanguages
	}
	if strings.TrimSpace(c.History.Dir) == "" {
		c.History.Dir = defaultHistoryDir
	}
	expanded, err := expandPath(c.History.Dir)
	if err != nil {
		return fmt.Errorf("history.dir: %w", err)
	}
	c.History.Dir = expanded
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
