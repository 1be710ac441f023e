package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coverkeep/internal/quota"
)

func newQuotaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show how many image searches ran today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			count := quota.Open(cfg.QuotaPath(), ctx.log()).Today()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int{"today": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image searches today: %d\n", count)
			return nil
		},
	}
}
