package main

import (
	"fmt"

	httpAdapter "github.com/aretw0/hbnb/internal/adapters/http"
	"github.com/aretw0/hbnb/internal/cli"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/observability"
	"github.com/aretw0/hbnb/pkg/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the stored objects as a JSON API under /api/v1, a console endpoint
(POST /api/v1/console) and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger := cli.CreateLogger(cfg.Debug)
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		var engine *storage.Engine
		metrics := observability.NewMetrics(
			observability.WithRuntimeCollectors(),
			observability.WithObjectGauge(func() int { return len(engine.Keys()) }),
		)
		engine, err = cli.OpenStore(sigCtx, cfg,
			storage.WithLogger(logger),
			storage.WithSaveObserver(metrics),
		)
		if err != nil {
			return err
		}
		defer engine.Close()

		handler := httpAdapter.NewHandler(engine, models.DefaultRegistry(),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
		)

		fmt.Fprintf(cmd.OutOrStdout(), "Starting HBNB Server on %s (%s backend)\n", cfg.HTTP.Addr, cfg.Storage.Backend)
		if err := httpAdapter.Serve(sigCtx, cfg.HTTP.Addr, handler, logger); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "HBNB Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
}
