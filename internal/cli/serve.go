package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/modstack/modstack/internal/api"
	"github.com/modstack/modstack/pkg/refresh"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the resolver state over HTTP",
		Long: `Serve scans the installation and exposes the module cache, resolved
order, validation findings, and launch parameters as a JSON API.

Endpoints:
  GET /api/modules
  GET /api/modules/{id}
  GET /api/modules/{id}/validation
  GET /api/order
  GET /api/params?mode=singleplayer
  GET /api/graph.dot
  GET /api/graph.svg
  GET /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadEnv()
			if err != nil {
				return err
			}

			runner, profile, err := c.newRunner(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer runner.Snapshots.Close()

			if _, err := runner.Refresh(cmd.Context(), refresh.Request{
				Event:    refresh.EventSetup,
				Profile:  profile,
				GamePath: cfg.GamePath,
			}); err != nil {
				return err
			}

			server := api.NewServer(runner, c.Logger)
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("serving", "addr", addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
				return cmd.Context().Err()
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8480", "listen address")
	return cmd
}
