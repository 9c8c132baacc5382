package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Body size bounds for NEXRAD_MAX_BODY_SIZE.
const (
	MinBodySize = 1 << 10
	MaxBodySize = 64 << 20
)

// Config holds CLI settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// ProjectionDir is where projection tables are persisted.
	ProjectionDir      string
	ProjectionCacheTTL time.Duration

	// MaxBodySize caps the declared size of a decompressed message body.
	MaxBodySize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(envOrDefault("NEXRAD_PROJECTION_CACHE_TTL", "10m"))
	if err != nil || ttl <= 0 {
		return nil, errors.New("invalid NEXRAD_PROJECTION_CACHE_TTL")
	}

	bodySize, err := strconv.Atoi(envOrDefault("NEXRAD_MAX_BODY_SIZE", "8388608"))
	if err == nil {
		err = CheckBodySize(bodySize)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid NEXRAD_MAX_BODY_SIZE: %w", err)
	}

	cfg := &Config{
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "text"),
		ProjectionDir:      envOrDefault("NEXRAD_PROJECTION_DIR", "./projections"),
		ProjectionCacheTTL: ttl,
		MaxBodySize:        bodySize,
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("invalid LOG_FORMAT: must be json or text")
	}
	if cfg.ProjectionDir == "" {
		return nil, errors.New("NEXRAD_PROJECTION_DIR is required")
	}

	return cfg, nil
}

// CheckBodySize reports whether n is an acceptable decompressed body ceiling.
func CheckBodySize(n int) error {
	if n < MinBodySize || n > MaxBodySize {
		return fmt.Errorf("%d must be between %d and %d", n, MinBodySize, MaxBodySize)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
