// Package config provides environment-driven configuration for the exporter.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/wiki-exporter/internal/storage"
)

// Config holds the full runtime configuration for the service.
// Every field maps to one environment variable; load order is environment
// only, with .env files handled by the CLI entry point before Load runs.
type Config struct {
	// HTTP server
	Host string // APP_HOST
	Port int    // APP_PORT

	// Persistence
	DatabaseURL string // DATABASE_URL (PostgreSQL connection string)

	// Object storage
	Minio storage.MinioConfig

	// Event publishing. Empty disables Redis and falls back to log-only
	// publishing.
	RedisURL string // REDIS_URL

	// GitHub access. Empty means unauthenticated requests.
	GitHubToken string // GITHUB_TOKEN

	// Pipeline behavior
	MaxConcurrentJobs int  // MAX_CONCURRENT_JOBS
	DisableChrome     bool // DISABLE_CHROME (skip headless PDF rendering)
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Host:        envString("APP_HOST", "0.0.0.0"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Minio: storage.MinioConfig{
			Endpoint:  envString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: envString("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: envString("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    envString("MINIO_BUCKET", "wiki-exports"),
		},
		RedisURL:    os.Getenv("REDIS_URL"),
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
	}

	var err error
	if cfg.Port, err = envInt("APP_PORT", 8000); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentJobs, err = envInt("MAX_CONCURRENT_JOBS", 4); err != nil {
		return nil, err
	}
	if cfg.Minio.UseSSL, err = envBool("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.DisableChrome, err = envBool("DISABLE_CHROME", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: APP_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("config error: MAX_CONCURRENT_JOBS must be positive, got %d", c.MaxConcurrentJobs)
	}
	if c.Minio.Endpoint == "" {
		return fmt.Errorf("config error: MINIO_ENDPOINT is required")
	}
	if c.Minio.Bucket == "" {
		return fmt.Errorf("config error: MINIO_BUCKET is required")
	}
	return nil
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func envBool(name string, fallback bool) (bool, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config error: %s must be a boolean, got %q", name, raw)
	}
	return b, nil
}
