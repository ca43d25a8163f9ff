package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/thruflo/stato/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <module-path>",
	Short: "List backups of a module, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject(cmd.Context(), projectDir())
		if err != nil {
			return err
		}
		defer m.Close()
		return showHistory(cmd.Context(), cmd.OutOrStdout(), m, args[0], historyLimit, jsonOutput())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of backups to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

// historyEntry is the JSON form of a backup, without its content.
type historyEntry struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
}

func showHistory(ctx context.Context, w io.Writer, m *state.Manager, rel string, limit int, asJSON bool) error {
	backups, err := m.History(ctx, rel, limit)
	if err != nil {
		return err
	}
	if asJSON {
		entries := make([]historyEntry, 0, len(backups))
		for _, b := range backups {
			entries = append(entries, historyEntry{ID: b.ID, Seq: b.Seq, CreatedAt: b.CreatedAt, Size: len(b.Content)})
		}
		return printJSON(w, entries)
	}
	if len(backups) == 0 {
		fmt.Fprintf(w, "No backups of %s.\n", rel)
		return nil
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Seq", "Created", "Size", "ID"})
	for _, b := range backups {
		tw.AppendRow(table.Row{b.Seq, formatTime(b.CreatedAt), len(b.Content), b.ID})
	}
	tw.Render()
	return nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
