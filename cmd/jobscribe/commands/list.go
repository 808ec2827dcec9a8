package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobscribe/internal/config"
	"jobscribe/internal/store"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

var (
	listOutputDir  string
	listFromSQLite bool
	listLimit      int
)

func init() {
	listCmd.Flags().StringVarP(&listOutputDir, "output", "o", "", "Directory holding the JSON collection.")
	listCmd.Flags().BoolVar(&listFromSQLite, "sqlite", false, "Read the SQLite mirror instead of the JSON collection.")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show only the last n records.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [-o dir] [--sqlite] [-n count]",
	Short: "Lists the scraped records.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, source, err := loadRecords(cmd.Context(), appConfig, listOutputDir, listFromSQLite)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintf(out, "No records in %s\n", source)
			return nil
		}
		renderRecords(out, lastRecords(records, listLimit))
		return nil
	},
}

// loadRecords reads the collection, or the SQLite mirror when fromSQLite is
// set, and names where it read from
func loadRecords(ctx context.Context, cfg *config.Config, outputDir string, fromSQLite bool) ([]models.Record, string, error) {
	if !fromSQLite {
		collection := store.NewJSONStore(cfg.CollectionPath(outputDir))
		records, err := collection.Load()
		return records, collection.Path, err
	}

	if cfg.Storage.SQLitePath == "" {
		return nil, "", fmt.Errorf("storage.sqlite_path is not configured")
	}
	mirror, err := store.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, "", err
	}
	defer mirror.Close()

	records, err := mirror.List(ctx)
	return records, cfg.Storage.SQLitePath, err
}

func lastRecords(records []models.Record, n int) []models.Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}

func renderRecords(w io.Writer, records []models.Record) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%d records", len(records)))
	t.AppendHeader(table.Row{"ID", "Title", "Company", "Location", "Published", "Apply"})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.ID,
			utils.Truncate(r.Title, 50),
			utils.Truncate(r.CompanyName, 30),
			utils.Truncate(r.Location, 30),
			r.PublishedAt,
			r.ApplyType,
		})
	}
	t.Render()
}
