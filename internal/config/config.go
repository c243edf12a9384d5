package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	JWTSecret       string
	JWTIssuer       string
	MongoURI        string
	MongoDB         string
	RedisURL        string
	AllowedOrigins  []string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	FluentBit       FluentBitConfig
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Tag     string
	Level   string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil {
		slog.Debug("[CONFIG] No .env file loaded, using environment only", "error", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "skillconnect"),
		RedisURL:        getEnv("REDIS_URL", ""),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		FluentBit: FluentBitConfig{
			Enabled: getEnvBool("FLUENTBIT_ENABLED", false),
			Host:    getEnv("FLUENTBIT_HOST", ""),
			Port:    getEnvInt("FLUENTBIT_PORT", 24224),
			Tag:     getEnv("FLUENTBIT_TAG", "skillconnect"),
			Level:   getEnv("FLUENTBIT_LOG_LEVEL", "info"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	if cfg.FluentBit.Enabled && cfg.FluentBit.Host == "" {
		slog.Warn("[CONFIG] FLUENTBIT_ENABLED is true but FLUENTBIT_HOST is not set, disabling Fluent Bit")
		cfg.FluentBit.Enabled = false
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("[CONFIG] Could not parse int, using default", "key", key, "value", value, "default", fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("[CONFIG] Could not parse bool, using default", "key", key, "value", value, "default", fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("[CONFIG] Could not parse duration, using default", "key", key, "value", value, "default", fallback)
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
