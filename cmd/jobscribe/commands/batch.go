package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

var batchFlags outputFlags

func init() {
	batchFlags.bind(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <file> [-m] [-o dir] [--md-dir dir] [--no-headless] [--profile dir]",
	Short: "Scrapes every job URL in a file, one per line.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := utils.ReadURLFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, line := range list.Skipped {
			fmt.Fprintf(out, "⚠️  Skipping invalid URL: %s...\n", utils.Truncate(line, 50))
		}
		if len(list.Valid) == 0 {
			return fmt.Errorf("no valid URLs found in %s", args[0])
		}

		snap, err := runBatch(cmd.Context(), out, list.Valid, batchFlags.batchOptions(cmd))
		if err != nil {
			return err
		}

		renderSummary(out, snap)

		if snap.State == models.BatchStateFailure {
			return fmt.Errorf("batch aborted: %s", snap.Error)
		}
		return nil
	},
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderSummary(w io.Writer, snap models.BatchSnapshot) {
	t := newTable(w)
	t.SetTitle("Batch " + string(snap.State))
	t.AppendHeader(table.Row{"Total", "Successful", "Failed", "Skipped", "Duration"})

	duration := "-"
	if snap.FinishedAt != nil {
		duration = utils.FormatDuration(snap.FinishedAt.Sub(snap.StartedAt))
	}
	t.AppendRow(table.Row{snap.Total, snap.SuccessCount, snap.FailureCount, snap.SkippedCount, duration})
	t.Render()

	if len(snap.FailedURLs) == 0 {
		return
	}

	failed := newTable(w)
	failed.AppendHeader(table.Row{"#", "Failed URL"})
	for i, url := range snap.FailedURLs {
		failed.AppendRow(table.Row{i + 1, url})
	}
	failed.Render()
}
