package main

// Re-export completed interviews whose spreadsheet export failed:
//   go run ./cmd/worker           # runs on EXPORT_RETRY_SCHEDULE (default every 5 minutes)
//   go run ./cmd/worker -once     # single pass, exit status 1 on failure

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"aihr-backend/internal/bootstrap"
	"aihr-backend/internal/jobs"
	"aihr-backend/internal/shared/config"
	"aihr-backend/internal/shared/storage/db"
	"aihr-backend/internal/shared/telemetry"
)

const (
	defaultSchedule           = "@every 5m"
	defaultShutdownTimeoutSec = 30
)

func main() {
	once := flag.Bool("once", false, "run a single export pass and exit")
	flag.Parse()

	cfg := config.Load()
	defer telemetry.Sync()

	app, err := bootstrap.Build(cfg, bootstrap.WithDBRole(db.RoleWorker))
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runOnce(ctx, app.InterviewsService); err != nil {
			os.Exit(1)
		}
		return
	}

	schedule := strings.TrimSpace(cfg.ExportRetrySchedule)
	if schedule == "" {
		schedule = defaultSchedule
	}
	job := jobs.NewExportRetryJob(app.InterviewsService, schedule)
	if err := job.Start(); err != nil {
		log.Fatalf("start export retry job: %v", err)
	}
	log.Printf("worker started schedule=%q", schedule)

	<-ctx.Done()

	shutdownTimeout := time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second
	log.Printf("shutdown requested, waiting up to %s for a running pass", shutdownTimeout)
	waitDone := make(chan struct{})
	go func() {
		job.Stop()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		log.Printf("shutdown timeout reached; exiting with a pass in flight")
	}
}

func runOnce(ctx context.Context, exporter jobs.PendingExporter) error {
	n, err := jobs.NewExportRetryJob(exporter, "").RunOnce(ctx)
	if err != nil {
		return err
	}
	telemetry.Info("worker.export_pass", map[string]any{"exported": n})
	return nil
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
