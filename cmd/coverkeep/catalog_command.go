package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/category"
	"coverkeep/internal/preflight"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the cover catalog",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogSummaryCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "List the covers of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			idx, err := catalogindex.Build(catalogindex.DirLister{}, cfg.Paths.CatalogDir, cat, ctx.log())
			if err != nil {
				return err
			}
			entries := idx.Entries()
			if ctx.jsonOutput() {
				names := make([]string, 0, len(entries))
				for _, e := range entries {
					names = append(names, e.Name)
				}
				return writeJSON(cmd, map[string]any{"category": cat.String(), "dir": idx.Dir(), "files": names})
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No covers in %s\n", idx.Dir())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Stem, e.Ext})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				fmt.Sprintf("%s (%d)", cat, len(entries)),
				[]string{"Name", "Type"},
				rows,
				nil,
			))
			return nil
		},
	}
}

func newCatalogSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count covers per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			counts, err := preflight.CatalogSummary(cfg.Paths.CatalogDir, ctx.log())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				out := make(map[string]int, len(counts))
				for _, c := range counts {
					out[c.Category.String()] = c.Images
				}
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []string{c.Category.String(), fmt.Sprint(c.Images)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("Catalog", []string{"Category", "Covers"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
