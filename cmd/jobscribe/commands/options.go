package commands

import (
	"github.com/spf13/cobra"

	"jobscribe/pkg/models"
)

// outputFlags are shared by scrape and batch
type outputFlags struct {
	markdown   bool
	output     string
	mdDir      string
	noHeadless bool
	profile    string
	skipSeen   bool
}

func (f *outputFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&f.markdown, "markdown", "m", false, "Also create Markdown files with YAML frontmatter.")
	flags.StringVarP(&f.output, "output", "o", "", "JSON output directory (default from config, ./output).")
	flags.StringVar(&f.mdDir, "md-dir", "", "Markdown output directory (default: same as --output).")
	flags.BoolVar(&f.noHeadless, "no-headless", false, "Show the browser window (useful for debugging).")
	flags.StringVar(&f.profile, "profile", "", "Use the persisted browser profile at this path (see the login command).")
	flags.BoolVar(&f.skipSeen, "skip-seen", false, "Skip listings already scraped, per the seen tracker.")
}

func (f *outputFlags) batchOptions(cmd *cobra.Command) models.BatchOptions {
	opts := models.BatchOptions{
		CreateDocument: f.markdown,
		OutputDir:      f.output,
		DocumentDir:    f.mdDir,
		SkipSeen:       f.skipSeen,
	}
	if f.noHeadless {
		headless := false
		opts.Headless = &headless
	}
	if cmd.Flags().Changed("profile") {
		opts.UsePersistedSession = true
		opts.SessionProfilePath = f.profile
	}
	return opts
}
