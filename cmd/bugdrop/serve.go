package main

import (
	"context"
	"os"

	"github.com/h0rv/bugdrop/internal/server"
	"github.com/h0rv/bugdrop/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP bridge for the browser extension",
		Long: `Run the local HTTP bridge.

POST /v1/actions accepts {"action": ...} envelopes (createBug,
fetchRecentBugs, fetchWorkspaces, testMondayConnection) and answers with
{"success": ..., "data"|"error": ...}. GET /healthz reports liveness.

Requests that omit a token, board or group use the saved settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}

			shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry.Enabled, os.Stderr, logger)
			if err != nil {
				return err
			}

			h := openHistory()
			if h != nil {
				defer h.Close()
			}

			srv := server.New(addr, newDispatcher(h), logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Run(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				return shutdownTracer(context.Background())
			})

			err = g.Wait()
			if err != nil {
				logger.Error("bridge stopped", zap.Error(err))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr, 127.0.0.1:7767)")
	return cmd
}
