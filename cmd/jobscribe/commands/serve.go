package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobscribe/internal/api/routes"
	"jobscribe/internal/background"
	"jobscribe/internal/logging"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--config path]",
	Short: "Runs the control panel API for starting and watching batches.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		logger := logging.GetGlobalLogger()

		deps, cleanup, err := buildDependencies(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		g, ctx := errgroup.WithContext(cmd.Context())

		manager, err := startManager(ctx, deps)
		if err != nil {
			return err
		}

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Server.ReadTimeout = cfg.Server.ReadTimeout
		e.Server.WriteTimeout = cfg.Server.WriteTimeout
		e.Server.IdleTimeout = cfg.Server.IdleTimeout
		routes.SetupRoutes(e, cfg, manager)

		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

		g.Go(func() error {
			logger.Info("Control panel starting", map[string]interface{}{
				"address": address,
			})
			if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("control panel failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Shutting down control panel...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			// stop the batch first so its session closes before the process exits
			if err := manager.Shutdown(shutdownCtx); err != nil {
				logger.Error("Error stopping batch manager", map[string]interface{}{
					"error": err.Error(),
				})
			}
			if err := e.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down control panel: %w", err)
			}

			logger.Info("Control panel shutdown complete")
			return nil
		})

		return g.Wait()
	},
}

// startManager starts a batch manager that outlives ctx. Cancelling ctx only
// triggers Shutdown, which stops the batch between records and cancels the
// manager itself once the in-flight record is done or the timeout expires.
func startManager(ctx context.Context, deps background.Dependencies) (*background.Manager, error) {
	manager := background.NewManager(deps)
	if err := manager.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	return manager, nil
}
