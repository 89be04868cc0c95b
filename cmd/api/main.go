package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"cv-backend/internal/bootstrap"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/server"
	"cv-backend/internal/shared/telemetry"
)

func main() {
	flags := pflag.NewFlagSet("api", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file")
	flags.String("port", "8080", "listen port")
	flags.String("style", "modern", "default render style")
	flags.String("font_dir", "", "directory holding Noto TrueType fonts")
	flags.String("db_path", "./data/cv.db", "SQLite database file")
	_ = flags.Parse(os.Args[1:])

	// only explicitly set flags override config
	set := pflag.NewFlagSet("set", pflag.ContinueOnError)
	flags.Visit(func(f *pflag.Flag) { set.AddFlag(f) })

	cfg, err := config.Load(config.Options{File: *configFile, Flags: set})
	if err != nil {
		telemetry.Error("config.load_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env, "style": cfg.Style})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("server.error", map[string]any{"err": err})
		os.Exit(1)
	}
	telemetry.Info("server.stopped", nil)
}
