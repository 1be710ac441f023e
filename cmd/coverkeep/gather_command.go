package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coverkeep/internal/category"
	"coverkeep/internal/config"
	"coverkeep/internal/imagesearch"
	"coverkeep/internal/logging"
	"coverkeep/internal/notifications"
	"coverkeep/internal/preflight"
	"coverkeep/internal/quota"
	"coverkeep/internal/reconcile"
)

func newGatherCommand(ctx *commandContext) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "gather <category> [title...]",
		Short: "Stage cover images for titles, reusing catalog images when present",
		Long: `Stage cover images for one or more titles of a category.

Books titles may name the author after a delimiter ("The Hobbit - J.R.R. Tolkien").
Titles already in the catalog are copied into staging; the rest are searched
on the web and downloaded. Use --file to read one title per line ("-" for stdin).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			titles := args[1:]
			if fromFile != "" {
				lines, err := readTitles(cmd.InOrStdin(), fromFile)
				if err != nil {
					return err
				}
				titles = append(titles, lines...)
			}
			if len(titles) == 0 {
				return errors.New("no titles given")
			}
			requests := make([]reconcile.Request, 0, len(titles))
			for _, t := range titles {
				requests = append(requests, reconcile.Request{Category: cat, Raw: t})
			}

			return ctx.withLock(func(cfg *config.Config) error {
				if err := requireReady(cfg); err != nil {
					return err
				}
				logger := ctx.log()
				session := reconcile.NewSession()
				if err := session.LoadInputs(pendingInputsPath(cfg)); err != nil {
					logging.WarnWithContext(logger, "failed to load pending inputs",
						"pending_inputs_load_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "earlier typed titles are not prefilled"))
				}

				acquirer := &reconcile.Acquirer{
					Resolver:        ctx.newResolver(cfg),
					Downloader:      imagesearch.NewDownloader(time.Duration(cfg.Search.TimeoutSeconds)*time.Second, logger),
					Counter:         quota.Open(cfg.QuotaPath(), logger),
					StagingDir:      cfg.Paths.StagingDir,
					ResultsPerQuery: cfg.Search.ResultsPerQuery,
					Logger:          logger,
				}
				if cfg.SearchConfigured() {
					client, err := imagesearch.New(cmd.Context(), imagesearch.Config{
						APIKey:   cfg.Search.APIKey,
						EngineID: cfg.Search.EngineID,
						Timeout:  time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
					}, logger)
					if err != nil {
						return err
					}
					acquirer.Searcher = client
				}
				if ctx.interactive() {
					acquirer.Selector = ctx.terminal
				}

				report := acquirer.Gather(cmd.Context(), session, requests)
				if err := session.SaveInputs(pendingInputsPath(cfg)); err != nil {
					logging.WarnWithContext(logger, "failed to save pending inputs",
						"pending_inputs_save_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "promote will prefill from file names only"))
				}
				ctx.notify(cmd, cfg, notifications.EventGatherCompleted, notifications.Payload{
					"category": cat.String(),
					"staged":   report.Count(reconcile.StatusDownloaded) + report.Count(reconcile.StatusCatalogHit),
					"failed":   report.Count(reconcile.StatusFailed),
				})
				return printReport(cmd, ctx, "Gathered "+cat.String(), report)
			})
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read titles from a file, one per line (\"-\" for stdin)")
	return cmd
}

// readTitles returns the non-blank lines of path, or of stdin for "-".
func readTitles(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open titles file: %w", err)
		}
		defer file.Close()
		r = file
	}
	var titles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return titles, nil
}

// requireReady fails when a working directory is unusable.
func requireReady(cfg *config.Config) error {
	failed := preflight.Failed(preflight.CheckPaths(cfg))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}
