package main

import (
	"github.com/spf13/cobra"

	"coverkeep/internal/bookinfo"
	"coverkeep/internal/catalogwriter"
	"coverkeep/internal/config"
	"coverkeep/internal/logging"
	"coverkeep/internal/notifications"
	"coverkeep/internal/reconcile"
)

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var skipMetadata bool

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Move staged covers into the catalog",
		Long: `Move staged covers into the catalog.

Catalog copies left by gather are deleted. Books covers already in the catalog
are dropped from staging; new books are catalogued after their metadata is
collected. Covers of other categories move straight into their folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func(cfg *config.Config) error {
				if err := requireReady(cfg); err != nil {
					return err
				}
				logger := ctx.log()
				session := reconcile.NewSession()
				session.SkipAllMetadata = skipMetadata
				if err := session.LoadInputs(pendingInputsPath(cfg)); err != nil {
					logging.WarnWithContext(logger, "failed to load pending inputs",
						"pending_inputs_load_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "prompts prefill from file names only"))
				}

				promoter := &reconcile.Promoter{
					Resolver:   ctx.newResolver(cfg),
					Writer:     catalogwriter.New(cfg.Paths.CatalogDir, logger),
					Store:      ctx.openStore(cfg),
					StagingDir: cfg.Paths.StagingDir,
					Logger:     logger,
				}
				if ctx.interactive() {
					promoter.Prompter = ctx.terminal
				}
				if cfg.BookInfo.Enabled {
					client, err := bookinfo.New(cmd.Context(), ctx.bookInfoConfig(cfg), logger)
					if err != nil {
						logging.WarnWithContext(logger, "book info lookups unavailable",
							"bookinfo_init_failed",
							logging.Error(err),
							logging.String(logging.FieldImpact, "prompts start without suggestions"))
					} else {
						promoter.Suggester = client
					}
				}

				report := promoter.Promote(cmd.Context(), session)
				if err := session.SaveInputs(pendingInputsPath(cfg)); err != nil {
					logging.WarnWithContext(logger, "failed to save pending inputs",
						"pending_inputs_save_failed",
						logging.Error(err))
				}
				ctx.notify(cmd, cfg, notifications.EventPromoteCompleted, notifications.Payload{
					"promoted": report.Count(reconcile.StatusPromoted),
					"declined": report.Count(reconcile.StatusDeclined),
					"failed":   report.Count(reconcile.StatusFailed),
				})
				return printReport(cmd, ctx, "Promoted", report)
			})
		},
	}

	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Catalog new books without prompting, storing empty metadata")
	return cmd
}
