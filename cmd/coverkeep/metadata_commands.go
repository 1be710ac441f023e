package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"coverkeep/internal/catalogindex"
	"coverkeep/internal/catalogwriter"
	"coverkeep/internal/category"
	"coverkeep/internal/config"
	"coverkeep/internal/metadata"
	"coverkeep/internal/tabular"
	"coverkeep/internal/textutil"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metaCmd := &cobra.Command{
		Use:     "metadata",
		Aliases: []string{"meta"},
		Short:   "Query and edit book metadata",
	}
	metaCmd.AddCommand(newMetadataListCommand(ctx))
	metaCmd.AddCommand(newMetadataIncompleteCommand(ctx))
	metaCmd.AddCommand(newMetadataSearchCommand(ctx))
	metaCmd.AddCommand(newMetadataShowCommand(ctx))
	metaCmd.AddCommand(newMetadataEditCommand(ctx))
	metaCmd.AddCommand(newMetadataImportCommand(ctx))
	metaCmd.AddCommand(newMetadataExportCommand(ctx))
	metaCmd.AddCommand(newMetadataGenresCommand(ctx))
	return metaCmd
}

type recordJSON struct {
	Key string `json:"key"`
	metadata.Record
}

func printRecords(cmd *cobra.Command, ctx *commandContext, title string, store *metadata.Store, keys []string) error {
	if ctx.jsonOutput() {
		out := make([]recordJSON, 0, len(keys))
		for _, key := range keys {
			rec, _ := store.Get(key)
			out = append(out, recordJSON{Key: key, Record: rec})
		}
		return writeJSON(cmd, out)
	}
	if len(keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching books")
		return nil
	}
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rec, _ := store.Get(key)
		rows = append(rows, []string{key, rec.Title, rec.Author, rec.PublicationDate, rec.PageCount, strings.Join(rec.Genres, ", ")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		fmt.Sprintf("%s (%d)", title, len(keys)),
		[]string{"Key", "Title", "Author", "Published", "Pages", "Genres"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

func newMetadataListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openStore(ctx.configValue())
			return printRecords(cmd, ctx, "Books", store, store.Keys())
		},
	}
}

func newMetadataIncompleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "incomplete",
		Short: "List books missing author, publication date, page count or genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openStore(ctx.configValue())
			return printRecords(cmd, ctx, "Incomplete metadata", store, store.FindIncomplete())
		},
	}
}

func addFilterFlags(cmd *cobra.Command, f *metadata.Filter) {
	cmd.Flags().StringVar(&f.Author, "author", "", "Author contains (case-insensitive)")
	cmd.Flags().StringSliceVar(&f.Genres, "genre", nil, "Required genre (repeatable)")
	cmd.Flags().StringVar(&f.PageFrom, "pages-from", "", "Minimum page count")
	cmd.Flags().StringVar(&f.PageTo, "pages-to", "", "Maximum page count")
	cmd.Flags().StringVar(&f.YearFrom, "year-from", "", "Earliest publication year")
	cmd.Flags().StringVar(&f.YearTo, "year-to", "", "Latest publication year")
}

func filterEmpty(f metadata.Filter) bool {
	return strings.TrimSpace(f.Author) == "" && len(f.Genres) == 0 &&
		strings.TrimSpace(f.PageFrom) == "" && strings.TrimSpace(f.PageTo) == "" &&
		strings.TrimSpace(f.YearFrom) == "" && strings.TrimSpace(f.YearTo) == ""
}

// warnMalformed notes bounds that will be treated as 0.
func warnMalformed(cmd *cobra.Command, f metadata.Filter) {
	if bad := f.MalformedBounds(); len(bad) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: non-numeric %s treated as 0\n", strings.Join(bad, ", "))
	}
}

func newMetadataSearchCommand(ctx *commandContext) *cobra.Command {
	var filter metadata.Filter
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find books by author, genre, page count or publication year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			warnMalformed(cmd, filter)
			store := ctx.openStore(ctx.configValue())
			return printRecords(cmd, ctx, "Search results", store, store.Search(filter))
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

// resolveRecordKey finds the record for a key or title prefix, asking the
// user to choose when several match.
func resolveRecordKey(cmdCtx context.Context, ctx *commandContext, store *metadata.Store, query string) (string, error) {
	query = strings.TrimSpace(query)
	if _, ok := store.Get(query); ok {
		return query, nil
	}
	matches := store.FindByTitle(query)
	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("no book matching %q in metadata", query)
	case len(matches) == 1:
		return matches[0], nil
	case ctx.interactive():
		key, ok, err := ctx.terminal.Choose(cmdCtx, query, matches)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New("no book selected")
		}
		return key, nil
	default:
		return "", fmt.Errorf("%q matches several books: %s", query, strings.Join(matches, ", "))
	}
}

func newMetadataShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <key-or-title>",
		Short: "Show one book record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openStore(ctx.configValue())
			key, err := resolveRecordKey(cmd.Context(), ctx, store, args[0])
			if err != nil {
				return err
			}
			rec, _ := store.Get(key)
			if ctx.jsonOutput() {
				return writeJSON(cmd, recordJSON{Key: key, Record: rec})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Key:        %s\n", key)
			fmt.Fprintf(out, "Title:      %s\n", rec.Title)
			fmt.Fprintf(out, "Author:     %s\n", rec.Author)
			fmt.Fprintf(out, "Published:  %s\n", rec.PublicationDate)
			fmt.Fprintf(out, "Pages:      %s\n", rec.PageCount)
			fmt.Fprintf(out, "Genres:     %s\n", strings.Join(rec.Genres, ", "))
			fmt.Fprintf(out, "Complete:   %s\n", yesNo(!rec.Incomplete()))
			return nil
		},
	}
}

type editFlags struct {
	title, author, published, pages string
	genres                          []string
	addGenres                       []string
}

func (e editFlags) apply(cmd *cobra.Command, rec metadata.Record) (metadata.Record, bool) {
	changed := false
	set := func(name string, dst *string, value string) {
		if cmd.Flags().Changed(name) {
			*dst = value
			changed = true
		}
	}
	set("title", &rec.Title, e.title)
	set("author", &rec.Author, e.author)
	set("published", &rec.PublicationDate, e.published)
	set("pages", &rec.PageCount, e.pages)
	if cmd.Flags().Changed("genres") {
		rec.Genres = e.genres
		changed = true
	}
	for _, g := range e.addGenres {
		if !rec.HasGenre(g) {
			rec.Genres = append(rec.Genres, strings.TrimSpace(g))
		}
		changed = true
	}
	return rec, changed
}

func newMetadataEditCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	cmd := &cobra.Command{
		Use:   "edit <key-or-title>",
		Short: "Edit one book record",
		Long: `Edit one book record with flags, or in the terminal form when no flags are given.

Changing the title or author moves the record to its new key and renames the
catalog cover to match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func(cfg *config.Config) error {
				store := ctx.openStore(cfg)
				key, err := resolveRecordKey(cmd.Context(), ctx, store, args[0])
				if err != nil {
					return err
				}
				current, _ := store.Get(key)
				rec, changed := flags.apply(cmd, current)
				if !changed {
					if !ctx.interactive() {
						return errors.New("no changes given; pass edit flags or run in a terminal")
					}
					rec, err = ctx.terminal.EditMetadata(cmd.Context(), key, current, store.Genres())
					if err != nil {
						return err
					}
				}
				newKey, err := store.Update(key, rec)
				if err != nil {
					return err
				}
				if err := store.Save(); err != nil {
					return err
				}
				if newKey != key {
					if err := renameCatalogCover(cmd.Context(), ctx, cfg, key, newKey); err != nil {
						return revertEdit(store, newKey, current, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", newKey)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&flags.title, "title", "", "New title")
	cmd.Flags().StringVar(&flags.author, "author", "", "New author")
	cmd.Flags().StringVar(&flags.published, "published", "", "Publication date")
	cmd.Flags().StringVar(&flags.pages, "pages", "", "Page count")
	cmd.Flags().StringSliceVar(&flags.genres, "genres", nil, "Replace genres (comma-separated)")
	cmd.Flags().StringSliceVar(&flags.addGenres, "add-genre", nil, "Add a genre (repeatable)")
	return cmd
}

// revertEdit restores the record saved before a failed cover rename and
// returns cause.
func revertEdit(store *metadata.Store, newKey string, previous metadata.Record, cause error) error {
	if _, err := store.Update(newKey, previous); err != nil {
		return fmt.Errorf("%w (restore record: %v)", cause, err)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("%w (restore record: %v)", cause, err)
	}
	return cause
}

// renameCatalogCover moves Books/<oldKey>.<ext> to Books/<newKey>.<ext> when
// the cover exists.
func renameCatalogCover(cmdCtx context.Context, ctx *commandContext, cfg *config.Config, oldKey, newKey string) error {
	idx, err := catalogindex.Build(catalogindex.DirLister{}, cfg.Paths.CatalogDir, category.Books, ctx.log())
	if err != nil {
		return err
	}
	for _, entry := range idx.Entries() {
		if entry.Stem != oldKey {
			continue
		}
		writer := catalogwriter.New(cfg.Paths.CatalogDir, ctx.log())
		_, err := writer.Place(cmdCtx, entry.Path, category.Books, newKey, entry.Ext, catalogwriter.Move)
		return err
	}
	return nil
}

func newMetadataImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge book records from a .xlsx, .csv or .parquet file",
		Long: `Merge book records from a spreadsheet.

The header row must contain title and author columns; publication date, page
count and genres (comma-separated) are optional. Rows overwrite existing
records with the same key. Rows without a title are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			rows, err := tabular.Import(path)
			if err != nil {
				return err
			}
			return ctx.withLock(func(cfg *config.Config) error {
				store := ctx.openStore(cfg)
				result := store.MergeFromImport(rows)
				if err := store.Save(); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"imported": result.Imported, "skipped": result.Skipped, "keys": result.Keys})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s, skipped %d\n",
					result.Imported, textutil.Ternary(result.Imported == 1, "record", "records"), result.Skipped)
				return nil
			})
		},
	}
}

func newMetadataExportCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write books with missing metadata to a .xlsx, .csv or .parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			store := ctx.openStore(ctx.configValue())
			keys := store.FindIncomplete()
			if all {
				keys = store.Keys()
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books with missing metadata")
				return nil
			}
			records := make([]metadata.Record, 0, len(keys))
			for _, key := range keys {
				rec, _ := store.Get(key)
				records = append(records, rec)
			}
			if err := tabular.Export(path, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Export every record, not only incomplete ones")
	return cmd
}

func newMetadataGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List every genre with its book count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.openStore(ctx.configValue())
			counts := make(map[string]int)
			for _, genre := range store.Genres() {
				counts[genre] = len(store.Search(metadata.Filter{Genres: []string{genre}}))
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, counts)
			}
			genres := make([]string, 0, len(counts))
			for g := range counts {
				genres = append(genres, g)
			}
			sort.Strings(genres)
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{g, fmt.Sprint(counts[g])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("Genres", []string{"Genre", "Books"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
