package main

// Build the scheduled export retry Lambda (EventBridge rule target):
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"aihr-backend/internal/bootstrap"
	"aihr-backend/internal/jobs"
	"aihr-backend/internal/shared/config"
	"aihr-backend/internal/shared/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	job      *jobs.ExportRetryJob
)

func initApp() {
	app, err := bootstrap.Build(config.Load())
	if err != nil {
		initErr = err
		return
	}
	job = jobs.NewExportRetryJob(app.InterviewsService, "")
}

type result struct {
	Exported int `json:"exported"`
}

func handler(ctx context.Context, event events.CloudWatchEvent) (result, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
		return result{}, initErr
	}
	n, err := job.RunOnce(ctx)
	telemetry.Info("lambda.export_pass", map[string]any{"event_id": event.ID, "exported": n})
	return result{Exported: n}, err
}

func main() {
	lambda.Start(handler)
}
