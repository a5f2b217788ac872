package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/internal/domain"
	"github.com/yourusername/ncea-extract-go/pkg/units"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous batch runs",
	Run: func(cmd *cobra.Command, args []string) {
		rt, repo := openHistory()
		defer rt.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := repo.ListRuns(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			return
		}
		app.RenderRuns(cmd.OutOrStdout(), runs)
	},
}

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the task outcomes of a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, repo := openHistory()
		defer rt.Close()

		run, err := repo.FindRun(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		records, err := repo.ListTaskRecords(run.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:        %s\n", run.ID)
		fmt.Fprintf(out, "Status:     %s\n", run.Status)
		fmt.Fprintf(out, "Standards:  %s\n", run.Standards)
		fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if run.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:      %s\n", run.ErrorMessage)
		}
		fmt.Fprintf(out, "Downloaded: %d of %d (%.2f%%), %s on disk\n\n",
			run.Downloaded, run.Total, run.Percentage, units.FormatBytes(run.TotalSize))

		if counts, err := rt.History.CountByOutcome(run.ID); err == nil && len(counts) > 0 {
			parts := make([]string, 0, len(counts))
			for _, kind := range []domain.OutcomeKind{domain.OutcomeDownloaded, domain.OutcomeSkipped, domain.OutcomeMissed, domain.OutcomeFailed} {
				if n := counts[kind]; n > 0 {
					parts = append(parts, fmt.Sprintf("%s=%d", kind, n))
				}
			}
			fmt.Fprintf(out, "Recorded:   %s\n\n", strings.Join(parts, " "))
		}

		app.RenderTasks(out, records)
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show (0 for all)")
}
