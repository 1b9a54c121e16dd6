package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulseiq/pulseiq/internal/app"
	"github.com/pulseiq/pulseiq/internal/server"
	"github.com/pulseiq/pulseiq/pkg/cron"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long: `Run the HTTP API: the ingest endpoint the dashboard uploads exports to
and the reporting endpoints it reads from. When INGEST_WATCH_DIR is set a
background job also sweeps that directory for new exports on a schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	deps, err := app.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := server.New(cfg, deps.IngestHandler, deps.ReportingHandler, logger)

	var scheduler *cron.Scheduler
	if cfg.Ingest.WatchDir != "" {
		scheduler = cron.NewScheduler(deps.BatchRunner, cfg.Ingest.WatchDir, cfg.Ingest.WatchSchedule, logger)
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
