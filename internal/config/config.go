package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the catalog, staging, state and log directories.
type Paths struct {
	CatalogDir string `toml:"catalog_dir"`
	StagingDir string `toml:"staging_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Search contains credentials and limits for the image search API.
type Search struct {
	APIKey          string `toml:"api_key"`
	EngineID        string `toml:"engine_id"`
	ResultsPerQuery int    `toml:"results_per_query"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// BookInfo contains settings for volume lookups used to prefill book metadata.
type BookInfo struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains ntfy settings for run summaries.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	TimeoutSeconds int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for coverkeep.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Search        Search        `toml:"search"`
	BookInfo      BookInfo      `toml:"bookinfo"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("coverkeep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the catalog category folders' parent, the staging
// area and the state directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CatalogDir, c.Paths.StagingDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MetadataPath is the JSON document holding every book metadata record.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.Paths.StateDir, "book_metadata.json")
}

// QuotaPath is the JSON document holding the daily search counter.
func (c *Config) QuotaPath() string {
	return filepath.Join(c.Paths.StateDir, "daily_queries.json")
}

// LockPath is the advisory lock taken by commands that mutate the catalog.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "coverkeep.lock")
}

// SearchConfigured reports whether image search credentials are present.
func (c *Config) SearchConfigured() bool {
	return strings.TrimSpace(c.Search.APIKey) != "" && strings.TrimSpace(c.Search.EngineID) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
