package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"coverkeep/internal/reconcile"
)

type itemJSON struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Key      string   `json:"key,omitempty"`
	Status   string   `json:"status"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type reportJSON struct {
	SessionID  string     `json:"session_id"`
	Items      []itemJSON `json:"items"`
	Queries    int        `json:"queries,omitempty"`
	QueryCount int        `json:"daily_query_count,omitempty"`
}

func reportToJSON(r reconcile.Report) reportJSON {
	out := reportJSON{SessionID: r.SessionID, Queries: r.Queries, QueryCount: r.QueryCount, Items: []itemJSON{}}
	for _, item := range r.Items {
		entry := itemJSON{
			Name:     item.Name,
			Category: item.Category.String(),
			Key:      item.Key,
			Status:   string(item.Status),
			Files:    item.Files,
		}
		if item.Err != nil {
			entry.Error = item.Err.Error()
		}
		out.Items = append(out.Items, entry)
	}
	return out
}

// printReport writes the report and returns an error when any item failed.
func printReport(cmd *cobra.Command, ctx *commandContext, title string, r reconcile.Report) error {
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, reportToJSON(r)); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(r.Items) == 0 {
			fmt.Fprintln(out, "Nothing to do")
		} else {
			rows := make([][]string, 0, len(r.Items))
			for _, item := range r.Items {
				detail := describeFiles(item.Files)
				if item.Err != nil {
					detail = item.Err.Error()
				}
				rows = append(rows, []string{item.Name, item.Category.String(), string(item.Status), detail})
			}
			fmt.Fprintln(out, renderTable(title, []string{"Item", "Category", "Status", "Detail"}, rows, nil))
		}
		if r.Queries > 0 {
			fmt.Fprintf(out, "Searches this run: %d (today: %d)\n", r.Queries, r.QueryCount)
		}
	}
	failed := r.Count(reconcile.StatusFailed)
	if failed > 0 {
		return fmt.Errorf("%d item(s) failed", failed)
	}
	return nil
}

func describeFiles(files []string) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	return strings.Join(names, ", ")
}
