package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/internal/api"
	"github.com/wonny/breakwatch/internal/api/handlers"
	"github.com/wonny/breakwatch/internal/api/stream"
	"github.com/wonny/breakwatch/internal/scheduler"
	"github.com/wonny/breakwatch/pkg/logger"
)

// serveCmd runs the refresh daemon behind the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server with scheduled refreshes",
	Long: `Starts the HTTP API and refreshes the group every interval.

Endpoints:
  GET  /health                 - Health check
  GET  /api/snapshot           - Latest full snapshot
  GET  /api/movers/gainers     - Top gainers (?limit=)
  GET  /api/movers/losers      - Top losers (?limit=)
  GET  /api/breakouts          - Latest breakouts
  GET  /api/plans              - Latest trade plans
  POST /api/refresh            - Refresh now (?group=)
  GET  /api/jobs               - Scheduler statistics
  GET  /ws/snapshots           - Websocket snapshot stream
  GET  /metrics                - Prometheus metrics

Example:
  go run ./cmd/breakwatch serve --port 8089 --interval 2m`,
	RunE: runServe,
}

var (
	serveOpts scanFlags
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveOpts.bind(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, groups, err := loadConfig(cmd, &serveOpts)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)
	ctx := cmd.Context()

	m := newMetrics(cfg)
	hub := stream.NewHub(m, log)
	go hub.Run(ctx)

	a, err := buildApp(ctx, cfg, groups, m, log, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(log)
	refresh, err := registerJobs(sched, cfg, a.pipeline, a.ledger, log)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Routes{
		Snapshots: handlers.NewSnapshotHandler(a.pipeline, a.pipeline.Store(), log),
		Hub:       hub,
		Jobs:      sched,
		Metrics:   a.metrics,
	}, log)
	server := api.New(cfg, log, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sched.Start()
	if err := sched.RunJob(refresh.Name()); err != nil {
		return err
	}

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			sched.Stop()
			return err
		}
	}

	log.Info("Shutting down server...")
	sched.Stop()

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
