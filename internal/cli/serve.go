package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/api"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analytics over HTTP",
		Long: `Start the HTTP API:

  POST /api/analyze                  analyze trades sent in the request body
  GET  /api/report?challenge=ID      report over the configured journal
  GET  /api/calendar?year=&month=    monthly P&L calendar
  GET  /api/challenges/:id/progress  challenge progress
  GET  /api/health`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				app.Config.Server.Host, app.Config.Server.Port = host, port
			}

			loc, err := app.Config.Location()
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(app.Config.Server, st, loc, app.Logger)
			started := time.Now()
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(app.Config.Addr())
			}()

			output.Info("Serving %s journal on http://%s", st.Name(), app.Config.Addr())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			if err := srv.Shutdown(context.Background()); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			output.Dim("Stopped after %s", FormatDuration(time.Since(started)))
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address host:port (default from config)")
	return cmd
}
