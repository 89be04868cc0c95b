package main

// Create or upgrade the cv_versions schema:
//   go run ./cmd/migrate [--config file]

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/storage/db"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/versions"
)

func main() {
	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(config.Options{File: *configFile})
	if err != nil {
		telemetry.Error("config.load_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	target := db.TargetFor(cfg.DatabaseURL, cfg.DBPath, opts)
	sqlDB, err := db.Connect(ctx, target, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := versions.NewSQLRepo(sqlDB, target.Dialect).Initialize(ctx); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"dialect": target.Dialect})
}
