package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subfetch/internal/history"
	"subfetch/internal/language"
	"subfetch/internal/subtitle"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var onlyFailed bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history journal is disabled in configuration")
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history journal: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit, onlyFailed)
			if err != nil {
				return fmt.Errorf("read history journal: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No history entries")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				score := ""
				if rec.Status == subtitle.StatusDownloaded {
					score = strconv.FormatFloat(rec.Score, 'f', 1, 64)
				}
				when := ""
				if !rec.CreatedAt.IsZero() {
					when = rec.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					when,
					rec.Source,
					language.Display(rec.Language),
					rec.Status,
					score,
					rec.Output,
				})
			}
			fmt.Fprintln(out, attemptTable(
				[]string{"When", "File", "Language", "Status", "Score", "Output"},
				rows,
				4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&onlyFailed, "failed", false, "Show only failed attempts")
	return cmd
}
