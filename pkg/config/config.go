package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	LogLevel        string
	RedisURL        string
	ProviderTimeout time.Duration
	MaxConcurrency  int
	OTLPEndpoint    string
	Issuer          string
	ProfilesDir     string
}

// Load loads configuration from environment variables.
func Load() *Config {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	redisURL := os.Getenv("REDIS_URL")

	timeout := 10 * time.Second
	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	maxConc := 4
	if v := os.Getenv("MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxConc = n
		}
	}

	issuer := os.Getenv("AXP_ISSUER")
	if issuer == "" {
		issuer = "did:web:axp.example.com"
	}

	profilesDir := os.Getenv("PROVIDER_PROFILES_DIR")
	if profilesDir == "" {
		profilesDir = "configs/providers"
	}

	return &Config{
		LogLevel:        logLevel,
		RedisURL:        redisURL,
		ProviderTimeout: timeout,
		MaxConcurrency:  maxConc,
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Issuer:          issuer,
		ProfilesDir:     profilesDir,
	}
}
