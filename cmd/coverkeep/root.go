package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var jsonFlag bool
	var noInteractive bool

	ctx := newCommandContext(&configFlag, &jsonFlag, &noInteractive)

	rootCmd := &cobra.Command{
		Use:           "coverkeep",
		Short:         "Local catalog manager for book, movie, game and album covers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Credentials may live in a .env file next to the working directory.
			_ = godotenv.Load()
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&noInteractive, "no-interactive", false, "Never open terminal prompts")

	rootCmd.AddCommand(newGatherCommand(ctx))
	rootCmd.AddCommand(newPromoteCommand(ctx))
	rootCmd.AddCommand(newShelveCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))
	rootCmd.AddCommand(newCatalogCommand(ctx))
	rootCmd.AddCommand(newMetadataCommand(ctx))
	rootCmd.AddCommand(newQuotaCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
