package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-backend/cv/render"
	"cv-backend/internal/cv"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/server"
	"cv-backend/internal/shared/storage/db"
	"cv-backend/internal/shared/storage/object"
	localstore "cv-backend/internal/shared/storage/object/local"
	s3store "cv-backend/internal/shared/storage/object/s3"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/versions"
)

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Dialect   string
	Store     object.ObjectStore
	Versions  versions.Repo
	Renderer  *render.Renderer
	CVService *cv.Service
	CVHandler *cv.Handler
}

// Build connects storage, seeds the version table and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.WorkingCopyKey) == "" {
		cfg.WorkingCopyKey = "cv.json"
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	repo, err := app.buildVersions(ctx)
	if err != nil {
		return nil, err
	}
	app.Versions = repo

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	renderer, err := buildRenderer(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Renderer = renderer

	if _, err := versions.SeedFrom(ctx, repo, cfg.SeedPath); err != nil {
		app.Close()
		return nil, err
	}

	app.CVService = &cv.Service{
		Versions:    repo,
		WorkingCopy: &cv.WorkingCopy{Store: store, Key: cfg.WorkingCopyKey},
		Renderer:    renderer,
	}
	app.CVHandler = cv.NewHandler(app.CVService, cfg.VersionsDefaultLimit)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		CVHandler: app.CVHandler,
	})
	return app, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	err := a.DB.Close()
	a.DB = nil
	return err
}

func (a *App) buildVersions(ctx context.Context) (versions.Repo, error) {
	cfg := a.Config
	if strings.TrimSpace(cfg.DatabaseURL) == "" && strings.TrimSpace(cfg.DBPath) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_versions", map[string]any{"reason": "no database configured"})
			return versions.NewMemoryRepo(), nil
		}
		return nil, fmt.Errorf("db_path or database_url is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	target := db.TargetFor(cfg.DatabaseURL, cfg.DBPath, opts)
	sqlDB, err := db.Connect(ctx, target, opts)
	if err != nil {
		return nil, err
	}
	a.DB = sqlDB
	a.Dialect = target.Dialect

	repo := versions.NewSQLRepo(sqlDB, target.Dialect)
	if err := repo.Initialize(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return repo, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRenderer(cfg config.Config) (*render.Renderer, error) {
	name := cfg.Style
	if name == "" {
		name = "modern"
	}
	style, err := render.StyleByName(name)
	if err != nil {
		return nil, fmt.Errorf("style %q: %w", name, err)
	}

	fonts, err := render.ResolveFonts(cfg.FontDir)
	if err != nil {
		return nil, err
	}
	telemetry.Info("bootstrap.fonts_loaded", map[string]any{"source": fonts.Source()})
	return render.New(style, fonts), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
