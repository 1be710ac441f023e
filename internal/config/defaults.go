package config

const (
	defaultConfigPath      = "~/.config/coverkeep/config.toml"
	defaultCatalogDir      = "~/.local/share/coverkeep/database"
	defaultStagingDir      = "~/.local/share/coverkeep/gathered"
	defaultStateDir        = "~/.local/share/coverkeep/state"
	defaultLogDir          = "~/.local/share/coverkeep/logs"
	defaultResultsPerQuery = 3
	defaultSearchTimeout   = 30
	defaultBookInfoTimeout = 15
	defaultNotifyTimeout   = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	maxResultsPerQuery     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir: defaultCatalogDir,
			StagingDir: defaultStagingDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Search: Search{
			ResultsPerQuery: defaultResultsPerQuery,
			TimeoutSeconds:  defaultSearchTimeout,
		},
		BookInfo: BookInfo{
			TimeoutSeconds: defaultBookInfoTimeout,
		},
		Notifications: Notifications{
			TimeoutSeconds: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
