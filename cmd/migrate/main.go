package main

// Apply or roll back the candidates/interviews schema:
//   go run ./cmd/migrate          # apply pending migrations
//   go run ./cmd/migrate -down    # revert the latest migration

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"aihr-backend/internal/shared/config"
	"aihr-backend/internal/shared/storage/db"
	"aihr-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg := config.Load()
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.ForRole(db.RoleMigrate))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	run := db.RunMigrations
	if *down {
		run = db.RollbackLast
	}
	if err := run(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"down": *down, "error": err})
		sqlDB.Close()
		os.Exit(1)
	}
}
