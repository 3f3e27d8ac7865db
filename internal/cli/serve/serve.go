// Package serve implements the serve command.
package serve

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/qrscan/internal/cli/app"
	"github.com/coral-mesh/qrscan/internal/constants"
	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		listen    string
		autoStart bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scanner over HTTP and websocket",
		Long: `Run the scanner as a service. Clients control scanning with REST calls and
receive events over a websocket.

Endpoints:
  GET  /health             - liveness check
  GET  /version            - build information
  POST /api/scan/start     - acquire the camera and start scanning
  POST /api/scan/stop      - stop scanning
  GET  /api/scan/state     - current state
  GET  /api/scan/stats     - counters
  GET  /api/scan/events    - websocket event stream (send {"command":"start"} or {"command":"stop"})

Control requests must send Content-Type: application/json and are refused
when their Origin does not match the server host.

Examples:
  qrscan serve
  qrscan serve --listen :8765 --start`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				env.Config.Server.Listen = listen
			}

			camera, err := app.NewCamera(env.Config.Camera, env.Logger)
			if err != nil {
				return err
			}

			hub := server.NewHub(constants.DefaultEventBuffer, env.Logger)
			ctrl, err := app.NewController(env, camera, app.NewDecoder(env.Config.Decoder), hub.Publish)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Listen:       env.Config.Server.Listen,
				MaxClients:   env.Config.Server.MaxClients,
				StartTimeout: env.Config.Camera.OpenTimeout,
				Controller:   ctrl,
				Hub:          hub,
				Logger:       env.Logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx)
			})
			g.Go(func() error {
				if autoStart {
					startCtx, cancel := context.WithTimeout(gctx, env.Config.Camera.OpenTimeout)
					err := <-ctrl.Start(startCtx)
					cancel()
					if err != nil && !errors.Is(err, scan.ErrStartAborted) {
						env.Logger.Error().Err(err).Msg("Failed to start scanning")
					}
				}
				<-gctx.Done()
				ctrl.Stop()
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", constants.DefaultServerListen, "Address to listen on")
	cmd.Flags().BoolVar(&autoStart, "start", false, "Start scanning immediately")

	return cmd
}
