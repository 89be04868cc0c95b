package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	DBPath      string
	DatabaseURL string

	WorkingCopyKey  string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	SeedPath string
	FontDir  string
	Style    string

	CORSAllowOrigin      []string
	VersionsDefaultLimit int

	// RenderRate is renders per second per client; 0 disables limiting.
	RenderRate  float64
	RenderBurst int
}

// Options controls where Load looks besides the environment.
type Options struct {
	// File is an explicit config file. When empty, config.{yaml,json,toml}
	// is searched in the working directory and ignored if absent.
	File string
	// Flags, when set, override every other source for the keys they define.
	Flags *pflag.FlagSet
	// EnvFiles are dotenv files loaded before reading the environment.
	EnvFiles []string
}

var defaults = map[string]any{
	"port":                   "8080",
	"env":                    "dev",
	"log_level":              "info",
	"log_format":             "json",
	"db_path":                "./data/cv.db",
	"database_url":           "",
	"working_copy_key":       "cv.json",
	"store_type":             "local",
	"local_store_dir":        "./data",
	"aws_region":             "",
	"s3_bucket":              "",
	"s3_prefix":              "",
	"sse_kms_key_id":         "",
	"seed_path":              "./cv.json",
	"font_dir":               "",
	"style":                  "modern",
	"cors_origins":           "http://localhost:5173",
	"versions_default_limit": 50,
	"render_rate":            2.0,
	"render_burst":           10,
}

// Load resolves configuration from defaults, an optional config file, dotenv
// files, CV_* environment variables and finally flags.
func Load(opts Options) (Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env", "cmd/.env"}
	}
	loadEnvFiles(envFiles...)

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("CV")
	v.AutomaticEnv()
	// bare names used by common hosting platforms
	_ = v.BindEnv("port", "CV_PORT", "PORT")
	_ = v.BindEnv("database_url", "CV_DATABASE_URL", "DATABASE_URL")

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		Port:                 v.GetString("port"),
		Env:                  normalizeEnv(v.GetString("env")),
		LogLevel:             v.GetString("log_level"),
		LogFormat:            v.GetString("log_format"),
		DBPath:               v.GetString("db_path"),
		DatabaseURL:          strings.TrimSpace(v.GetString("database_url")),
		WorkingCopyKey:       v.GetString("working_copy_key"),
		ObjectStoreType:      normalizeStoreType(v.GetString("store_type")),
		LocalStoreDir:        v.GetString("local_store_dir"),
		AWSRegion:            v.GetString("aws_region"),
		S3Bucket:             v.GetString("s3_bucket"),
		S3Prefix:             v.GetString("s3_prefix"),
		SSEKMSKeyID:          v.GetString("sse_kms_key_id"),
		SeedPath:             v.GetString("seed_path"),
		FontDir:              v.GetString("font_dir"),
		Style:                v.GetString("style"),
		CORSAllowOrigin:      splitAndTrim(v.GetStringSlice("cors_origins")...),
		VersionsDefaultLimit: v.GetInt("versions_default_limit"),
		RenderRate:           v.GetFloat64("render_rate"),
		RenderBurst:          v.GetInt("render_burst"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ObjectStoreType == "s3" && c.S3Bucket == "" {
		return errors.New("config: s3_bucket is required when store_type is s3")
	}
	if c.RenderRate < 0 || c.RenderBurst < 0 {
		return errors.New("config: render_rate and render_burst must not be negative")
	}
	if c.WorkingCopyKey == "" {
		return errors.New("config: working_copy_key is empty")
	}
	return nil
}

func splitAndTrim(raw ...string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
