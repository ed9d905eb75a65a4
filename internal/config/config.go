package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	// Environment
	Environment string
	Port        int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Composition defaults
	Scale      string
	ScalesFile string // optional HCL file with custom scales
	DrumKit    string

	// Limits
	MaxSourceBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	SessionTTL     time.Duration
	BatchJobs      int

	// Observability
	SentryDSN string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnvInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		Scale:          getEnv("CODEGROOVE_SCALE", "dorian"),
		ScalesFile:     getEnv("CODEGROOVE_SCALES_FILE", ""),
		DrumKit:        getEnv("CODEGROOVE_DRUM_KIT", "tr808"),
		MaxSourceBytes: int64(getEnvInt("MAX_SOURCE_BYTES", 1<<20)),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
		SessionTTL:     getEnvDuration("SESSION_TTL", 10*time.Minute),
		BatchJobs:      getEnvInt("CODEGROOVE_BATCH_JOBS", 4),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
	}
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
