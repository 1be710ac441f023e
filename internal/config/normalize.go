package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSearch()
	c.normalizeBookInfo()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.catalog_dir", &c.Paths.CatalogDir, defaultCatalogDir},
		{"paths.staging_dir", &c.Paths.StagingDir, defaultStagingDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
		{"paths.log_dir", &c.Paths.LogDir, ""},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeSearch() {
	c.Search.APIKey = strings.TrimSpace(c.Search.APIKey)
	if c.Search.APIKey == "" {
		if value, ok := os.LookupEnv("COVERKEEP_SEARCH_API_KEY"); ok {
			c.Search.APIKey = strings.TrimSpace(value)
		}
	}
	c.Search.EngineID = strings.TrimSpace(c.Search.EngineID)
	if c.Search.EngineID == "" {
		if value, ok := os.LookupEnv("COVERKEEP_SEARCH_ENGINE_ID"); ok {
			c.Search.EngineID = strings.TrimSpace(value)
		}
	}
	if c.Search.ResultsPerQuery == 0 {
		c.Search.ResultsPerQuery = defaultResultsPerQuery
	}
	if c.Search.TimeoutSeconds == 0 {
		c.Search.TimeoutSeconds = defaultSearchTimeout
	}
}

func (c *Config) normalizeBookInfo() {
	c.BookInfo.APIKey = strings.TrimSpace(c.BookInfo.APIKey)
	if c.BookInfo.APIKey == "" {
		if value, ok := os.LookupEnv("COVERKEEP_BOOKS_API_KEY"); ok {
			c.BookInfo.APIKey = strings.TrimSpace(value)
		}
	}
	if c.BookInfo.TimeoutSeconds == 0 {
		c.BookInfo.TimeoutSeconds = defaultBookInfoTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("COVERKEEP_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.TimeoutSeconds == 0 {
		c.Notifications.TimeoutSeconds = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
