package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, "cv.json", cfg.WorkingCopyKey)
	assert.Equal(t, "modern", cfg.Style)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	assert.Equal(t, 50, cfg.VersionsDefaultLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", " postgres://u@h/db ")
	t.Setenv("CV_ENV", "prod")
	t.Setenv("CV_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CV_VERSIONS_DEFAULT_LIMIT", "20")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://u@h/db", cfg.DatabaseURL)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, 20, cfg.VersionsDefaultLimit)
}

func TestLoadConfigFileDotenvAndFlags(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("style: classic\nfont_dir: /fonts\nport: \"7000\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CV_SEED_PATH=\"/seed/cv.json\"\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("CV_SEED_PATH") })

	fs := pflag.NewFlagSet("api", pflag.ContinueOnError)
	fs.String("port", "", "listen port")
	require.NoError(t, fs.Parse([]string{"--port", "7100"}))

	cfg, err := Load(Options{Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, "classic", cfg.Style)
	assert.Equal(t, "/fonts", cfg.FontDir)
	assert.Equal(t, "/seed/cv.json", cfg.SeedPath)
	assert.Equal(t, "7100", cfg.Port)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load(Options{File: "nope.yaml"})
	assert.Error(t, err)
}

func TestLoadRequiresBucketForS3(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CV_STORE_TYPE", "S3")
	_, err := Load(Options{})
	assert.ErrorContains(t, err, "s3_bucket")
}

func TestLoadRenderRateLimit(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.RenderRate)
	assert.Equal(t, 10, cfg.RenderBurst)

	t.Setenv("CV_RENDER_RATE", "-1")
	_, err = Load(Options{})
	assert.Error(t, err)
}
