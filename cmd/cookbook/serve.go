package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pbaille/cookbook/internal/api"
	"github.com/pbaille/cookbook/internal/catalog"
	"github.com/pbaille/cookbook/internal/dbwatch"
	"github.com/pbaille/cookbook/internal/events"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server with a websocket change feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			shutdownTimeout, err := time.ParseDuration(cfg.Server.ShutdownTimeout)
			if err != nil {
				return fmt.Errorf("parse server.shutdown_timeout: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hub := events.NewHub(logger.Named("events"))
			svc, s, err := getService(ctx, catalog.WithNotifier(hub))
			if err != nil {
				return err
			}
			defer s.Close()

			server := api.New(svc, hub,
				api.WithAddr(cfg.Server.Addr),
				api.WithLogger(logger.Named("api")),
				api.WithPinger(s),
				api.WithShutdownTimeout(shutdownTimeout),
			)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Run(ctx)
			})
			if watch {
				// picks up edits made by CLI commands against the same database
				w := dbwatch.New(cfg.Database.Path, 300*time.Millisecond, func() {
					// failures keep the previous snapshot and are logged by the service
					_ = svc.Refresh(ctx)
				}, logger.Named("dbwatch"))
				g.Go(func() error {
					return w.Run(ctx)
				})
			}

			fmt.Printf("Serving on %s (db %s)\n", cfg.Server.Addr, cfg.Database.Path)
			err = g.Wait()
			logger.Info("server stopped", zap.Error(err))
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the catalog when the database changes on disk")
	return cmd
}
