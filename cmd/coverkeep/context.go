package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"coverkeep/internal/bookinfo"
	"coverkeep/internal/catalogindex"
	"coverkeep/internal/config"
	"coverkeep/internal/fileutil"
	"coverkeep/internal/logging"
	"coverkeep/internal/metadata"
	"coverkeep/internal/notifications"
	"coverkeep/internal/resolver"
	"coverkeep/internal/tui"
)

const pendingInputsFile = "pending_inputs.json"

type commandContext struct {
	configFlag    *string
	jsonFlag      *bool
	noInteractive *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger

	terminal tui.Terminal
}

func newCommandContext(configFlag *string, jsonFlag, noInteractive *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		jsonFlag:      jsonFlag,
		noInteractive: noInteractive,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// interactive reports whether terminal prompts may be opened.
func (c *commandContext) interactive() bool {
	if c.noInteractive != nil && *c.noInteractive {
		return false
	}
	return !c.jsonOutput() && tui.Interactive()
}

// withLock runs fn while holding the process lock that serializes mutating
// commands.
func (c *commandContext) withLock(fn func(cfg *config.Config) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	unlock, err := fileutil.Lock(cfg.LockPath())
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return fmt.Errorf("another coverkeep command is running: %w", err)
		}
		return err
	}
	defer func() {
		_ = unlock()
	}()
	return fn(cfg)
}

func (c *commandContext) openStore(cfg *config.Config) *metadata.Store {
	return metadata.Open(cfg.MetadataPath(), c.log())
}

// newResolver uses the terminal picker for ambiguous matches when prompts are
// allowed and the first sorted candidate otherwise.
func (c *commandContext) newResolver(cfg *config.Config) *resolver.Resolver {
	var chooser resolver.Chooser = resolver.FirstChooser
	if c.interactive() {
		chooser = c.terminal
	}
	return resolver.New(cfg.Paths.CatalogDir, catalogindex.DirLister{}, chooser, c.log())
}

func (c *commandContext) bookInfoConfig(cfg *config.Config) bookinfo.Config {
	return bookinfo.Config{
		APIKey:  cfg.BookInfo.APIKey,
		Timeout: time.Duration(cfg.BookInfo.TimeoutSeconds) * time.Second,
	}
}

// notify publishes a run summary. Delivery failures are logged, never fatal.
func (c *commandContext) notify(cmd *cobra.Command, cfg *config.Config, event notifications.Event, payload notifications.Payload) {
	if err := notifications.NewService(cfg).Publish(cmd.Context(), event, payload); err != nil {
		logging.WarnWithContext(c.log(), "notification failed",
			"notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run summary not delivered"))
	}
}

func pendingInputsPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, pendingInputsFile)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
