// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"aihr-backend/internal/shared/telemetry"
)

const (
	defaultBatchSize = 50
	runTimeout       = 5 * time.Minute
)

// PendingExporter re-exports interviews whose spreadsheet export failed.
type PendingExporter interface {
	ExportPending(ctx context.Context, limit int) (int, error)
}

// ExportRetryJob periodically retries failed interview exports.
type ExportRetryJob struct {
	exporter  PendingExporter
	schedule  string
	batchSize int
	cron      *cron.Cron
}

// NewExportRetryJob creates the job. An empty schedule disables it.
func NewExportRetryJob(exporter PendingExporter, schedule string) *ExportRetryJob {
	return &ExportRetryJob{
		exporter:  exporter,
		schedule:  strings.TrimSpace(schedule),
		batchSize: defaultBatchSize,
		cron:      cron.New(),
	}
}

// Start schedules the job.
func (j *ExportRetryJob) Start() error {
	if j.schedule == "" {
		telemetry.Info("jobs.export_retry_disabled", nil)
		return nil
	}
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule export retry job: %w", err)
	}
	j.cron.Start()
	telemetry.Info("jobs.export_retry_started", map[string]any{"schedule": j.schedule})
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *ExportRetryJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// RunOnce performs one retry pass.
func (j *ExportRetryJob) RunOnce(ctx context.Context) (int, error) {
	n, err := j.exporter.ExportPending(ctx, j.batchSize)
	if err != nil {
		telemetry.Error("jobs.export_retry_failed", map[string]any{"error": err, "exported": n})
		return n, err
	}
	if n > 0 {
		telemetry.Info("jobs.export_retry_done", map[string]any{"exported": n})
	}
	return n, nil
}
