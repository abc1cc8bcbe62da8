package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/fleximart/internal/extract"
	"github.com/JonMunkholm/fleximart/internal/loader"
	"github.com/JonMunkholm/fleximart/internal/metrics"
	"github.com/JonMunkholm/fleximart/internal/pipeline"
	"github.com/JonMunkholm/fleximart/internal/store"
	"github.com/JonMunkholm/fleximart/internal/store/memory"
	"github.com/JonMunkholm/fleximart/internal/store/postgres"
	"github.com/JonMunkholm/fleximart/internal/web"
	"github.com/spf13/cobra"
)

var serveDryRun bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report and trigger runs over HTTP",
	Long: `Serve starts an HTTP server. POST /api/runs triggers a run (one at a
time), GET / shows the latest data-quality report and GET /metrics exposes
Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var open store.OpenFunc
		if serveDryRun {
			open = memory.New().Opener()
		} else {
			// Fail fast on an unreachable database
			pool, err := postgres.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			pool.Close()
			open = postgres.Opener(cfg.Database)
		}

		reg := metrics.NewRegistry()
		p := pipeline.New(extract.NewCSVSource(cfg.Sources), loader.New(open, loader.WithObserver(reg)), cfg.Report.Path,
			pipeline.WithTimeout(cfg.Run.Timeout),
			pipeline.WithTelemetry(reg),
		)
		service := pipeline.NewService(p, pipeline.NewRunLimiter(cfg.Run.MaxWaitTime), reg)
		server := web.NewServer(service, reg, cfg.Report.Path, cfg.Server)

		slog.Info("configuration loaded",
			"addr", cfg.Server.Addr(),
			"report", cfg.Report.Path,
			"dry_run", serveDryRun,
			"api_keys", len(cfg.Server.APIKeys),
		)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return fmt.Errorf("server: %w", err)
		case <-ctx.Done():
		}

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.Status(); st.Running {
			slog.Info("waiting for run to complete", "run_id", st.RunID)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "load into an in-memory store instead of the database")
}
