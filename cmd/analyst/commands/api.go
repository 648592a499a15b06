package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/analyst/internal/api"
	"github.com/wonny/analyst/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read-only status API",
	Long: `Start the HTTP status API.

Endpoints:
  GET /health                       - health check
  GET /api/performance              - accuracy, latest weekly score, recent calls
  GET /api/recommendations/pending  - calls awaiting review
  GET /api/scheduler/jobs           - job statistics (with --scheduler)
  GET /api/knowledge/stats          - knowledge store size

Example:
  go run ./cmd/analyst api
  go run ./cmd/analyst api --port 8090 --scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API port (default API_PORT)")
	apiCmd.Flags().BoolVar(&apiScheduler, "scheduler", false, "also run the scheduler in this process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	port := a.cfg.APIPort
	if apiPort != "" {
		port = apiPort
	}

	var jobStats handlers.JobStatsProvider
	if apiScheduler {
		sched, err := a.scheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		defer sched.Stop()
		jobStats = sched
	}

	router := api.NewRouter(
		handlers.NewPerformanceHandler(a.ledger, a.log),
		handlers.NewStatusHandler(jobStats, a.knowledge, a.log),
		a.log,
	)
	server := api.NewServer(net.JoinHostPort("", port), router, a.log)
	a.log.WithField("env", a.cfg.Env).Info("Status API configured")

	return server.Run(ctx)
}
