package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateBookInfo(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.CatalogDir == "" {
		return errors.New("paths.catalog_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.CatalogDir == c.Paths.StagingDir {
		return errors.New("paths.staging_dir must differ from paths.catalog_dir")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.ResultsPerQuery < 1 || c.Search.ResultsPerQuery > maxResultsPerQuery {
		return fmt.Errorf("search.results_per_query must be between 1 and %d", maxResultsPerQuery)
	}
	if c.Search.TimeoutSeconds <= 0 {
		return errors.New("search.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBookInfo() error {
	if c.BookInfo.TimeoutSeconds <= 0 {
		return errors.New("bookinfo.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.TimeoutSeconds <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
