package preflight

import (
	"context"
	"time"

	"coverkeep/internal/bookinfo"
	"coverkeep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results never block a run.
	Optional bool
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := CheckPaths(cfg)
	results = append(results, CheckSearchCredentials(cfg))
	if cfg.BookInfo.Enabled {
		results = append(results, CheckBookInfo(ctx, bookinfo.Config{
			APIKey:  cfg.BookInfo.APIKey,
			Timeout: time.Duration(cfg.BookInfo.TimeoutSeconds) * time.Second,
		}))
	}
	return results
}

// CheckPaths checks the directories every reconciliation run reads and writes.
func CheckPaths(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Catalog directory", cfg.Paths.CatalogDir),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}
