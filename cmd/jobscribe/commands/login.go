package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobscribe/internal/browser"
	"jobscribe/internal/config"
	"jobscribe/pkg/utils"
)

var loginProfile string

func init() {
	loginCmd.Flags().StringVar(&loginProfile, "profile", "", "Profile directory to create or reuse (default from config).")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [--profile dir]",
	Short: "Opens a visible browser on the login page so the session can be saved to a profile.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		profile := config.ExpandHome(utils.GetStringOrDefault(loginProfile, cfg.Browser.ProfileDir))

		session, err := browser.NewRodSession(cmd.Context(), browser.Options{
			Headless:      false,
			Stealth:       cfg.Scraper.StealthMode,
			UserAgent:     cfg.Scraper.UserAgent,
			Bin:           cfg.Browser.Bin,
			NoSandbox:     cfg.Browser.NoSandbox,
			ProfileDir:    profile,
			CreateProfile: true,
		})
		if err != nil {
			return err
		}
		defer session.Close()

		page, err := session.NewPage(cmd.Context())
		if err != nil {
			return err
		}

		navCtx, cancel := context.WithTimeout(cmd.Context(), cfg.Scraper.NavigationTimeout)
		defer cancel()
		if err := page.Navigate(navCtx, cfg.Browser.LoginURL); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🔐 Log in in the browser window. The session is saved to %s\n", profile)
		fmt.Fprintln(out, "   Press Enter here when done.")

		entered := make(chan struct{})
		go func() {
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
			close(entered)
		}()

		select {
		case <-entered:
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}

		fmt.Fprintln(out, "✅ Profile saved. Use --profile with scrape or batch to reuse it.")
		return nil
	},
}
