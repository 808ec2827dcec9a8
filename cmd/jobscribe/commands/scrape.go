package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

var scrapeFlags outputFlags

func init() {
	scrapeFlags.bind(scrapeCmd)
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url> [-m] [-o dir] [--md-dir dir] [--no-headless] [--profile dir]",
	Short: "Scrapes a single job listing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := utils.NormalizeListingURL(args[0])
		if !utils.IsListingURL(url) {
			return fmt.Errorf("invalid job URL %q, expected https://linkedin.com/jobs/view/", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🔍 Scraping job: %s\n", url)

		snap, err := runBatch(cmd.Context(), out, []string{url}, scrapeFlags.batchOptions(cmd))
		if err != nil {
			return err
		}

		switch {
		case snap.State == models.BatchStateFailure:
			return fmt.Errorf("scrape aborted: %s", snap.Error)
		case snap.FailureCount > 0:
			return fmt.Errorf("failed to scrape %s", url)
		}
		return nil
	},
}
