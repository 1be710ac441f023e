package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"coverkeep/internal/preflight"
	"coverkeep/internal/quota"
)

type statusJSON struct {
	ConfigPath   string         `json:"config_path"`
	ConfigExists bool           `json:"config_exists"`
	Checks       []checkJSON    `json:"checks"`
	Catalog      map[string]int `json:"catalog"`
	Staging      stagingJSON    `json:"staging"`
	Metadata     int            `json:"metadata_records"`
	Incomplete   int            `json:"metadata_incomplete"`
	SearchesDay  int            `json:"searches_today"`
}

type checkJSON struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type stagingJSON struct {
	Pending      int `json:"pending"`
	CatalogCopy  int `json:"catalog_copies"`
	Unrecognized int `json:"unrecognized"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency checks, catalog and staging state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.log()

			checks := preflight.RunAll(cmd.Context(), cfg)
			counts, err := preflight.CatalogSummary(cfg.Paths.CatalogDir, logger)
			if err != nil {
				return err
			}
			staged, err := preflight.SummarizeStaging(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			store := ctx.openStore(cfg)
			searches := quota.Open(cfg.QuotaPath(), logger).Today()

			if ctx.jsonOutput() {
				payload := statusJSON{
					ConfigPath:   ctx.configPath,
					ConfigExists: ctx.configExists,
					Catalog:      make(map[string]int, len(counts)),
					Staging:      stagingJSON{Pending: staged.Pending, CatalogCopy: staged.CatalogCopy, Unrecognized: staged.Unrecognized},
					Metadata:     store.Len(),
					Incomplete:   len(store.FindIncomplete()),
					SearchesDay:  searches,
				}
				for _, r := range checks {
					payload.Checks = append(payload.Checks, checkJSON{Name: r.Name, Passed: r.Passed, Optional: r.Optional, Detail: r.Detail})
				}
				for _, c := range counts {
					payload.Catalog[c.Category.String()] = c.Images
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configNote := ctx.configPath
			if !ctx.configExists {
				configNote += " (not found, using defaults)"
			}
			lines = append(lines, renderStatusLine("Config", statusInfo, configNote, colorize))
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, r := range checks {
				kind := statusOK
				switch {
				case !r.Passed && r.Optional:
					kind = statusWarn
				case !r.Passed:
					kind = statusError
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Catalog", colorize)...)
			for _, c := range counts {
				lines = append(lines, renderStatusLine(c.Category.String(), statusInfo, fmt.Sprintf("%d covers", c.Images), colorize))
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Work", colorize)...)
			stagingKind := statusInfo
			if staged.Unrecognized > 0 {
				stagingKind = statusWarn
			}
			lines = append(lines, renderStatusLine("Staging", stagingKind, staged.Detail(), colorize))
			lines = append(lines, renderStatusLine("Book metadata", statusInfo,
				fmt.Sprintf("%d records, %d incomplete", store.Len(), len(store.FindIncomplete())), colorize))
			lines = append(lines, renderStatusLine("Searches today", statusInfo, fmt.Sprint(searches), colorize))

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}
