package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coverkeep/internal/category"
)

type lookupJSON struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Result      string   `json:"result"`
	Path        string   `json:"path,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "lookup <category> <title>",
		Short: "Find a title's cover in the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			res := ctx.newResolver(cfg)
			resolution, err := res.Resolve(cmd.Context(), cat, args[1], author)
			if err != nil {
				return err
			}

			payload := lookupJSON{
				Category:   cat.String(),
				Title:      args[1],
				Author:     author,
				Result:     resolution.Outcome.Kind.String(),
				Path:       resolution.Path,
				Candidates: resolution.Outcome.Paths,
			}
			if !resolution.Found() && !resolution.Declined {
				idx, err := res.Index(cat)
				if err != nil {
					return err
				}
				for _, s := range idx.Suggest(args[1], 0) {
					payload.Suggestions = append(payload.Suggestions, s.Entry.Name)
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			switch {
			case resolution.Found():
				fmt.Fprintln(out, resolution.Path)
			case resolution.Declined:
				fmt.Fprintln(out, "No cover selected")
			default:
				fmt.Fprintf(out, "No %s cover found for %q\n", cat, args[1])
				if len(payload.Suggestions) > 0 {
					fmt.Fprintln(out, "Did you mean:")
					for _, name := range payload.Suggestions {
						fmt.Fprintf(out, "  %s\n", name)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Author (Books only)")
	return cmd
}
