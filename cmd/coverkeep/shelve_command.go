package main

import (
	"errors"

	"github.com/spf13/cobra"

	"coverkeep/internal/config"
	"coverkeep/internal/metadata"
	"coverkeep/internal/reconcile"
)

func newShelveCommand(ctx *commandContext) *cobra.Command {
	var filter metadata.Filter

	cmd := &cobra.Command{
		Use:   "shelve [key...]",
		Short: "Copy catalog book covers into staging",
		Long: `Copy the catalog covers of the given metadata keys into staging.

Without keys, the metadata filter flags select the books to copy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func(cfg *config.Config) error {
				if err := requireReady(cfg); err != nil {
					return err
				}
				keys := args
				if len(keys) == 0 {
					if filterEmpty(filter) {
						return errors.New("give keys or at least one filter flag")
					}
					warnMalformed(cmd, filter)
					keys = ctx.openStore(cfg).Search(filter)
				}
				shelver := &reconcile.Shelver{
					Resolver:   ctx.newResolver(cfg),
					StagingDir: cfg.Paths.StagingDir,
					Logger:     ctx.log(),
				}
				report := shelver.CopyToStaging(cmd.Context(), reconcile.NewSession(), keys)
				return printReport(cmd, ctx, "Shelved", report)
			})
		},
	}

	addFilterFlags(cmd, &filter)
	return cmd
}
