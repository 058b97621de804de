package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsentiment/internal/api"
	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/storage"
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored articles and reports over a read-only JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(func(cfg *config.Config) {
				if port > 0 {
					cfg.API.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			info, err := sourceInfo(a.cfg)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}
			store, err := storage.Open(a.cfg.Storage, a.logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()
			if err := store.Init(cmd.Context()); err != nil {
				return fmt.Errorf("init storage: %w", err)
			}

			srv := api.NewServer(a.cfg, store, api.Options{
				Sources: info,
				Metrics: observability.NewMetrics(a.logger),
				Version: config.Version,
			}, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (0 = config value)")
	return cmd
}
