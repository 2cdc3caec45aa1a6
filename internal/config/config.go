// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the server and the worker.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL      string
	DBMaxConns       int
	DBMinConns       int
	StatementTimeout time.Duration

	JWTSecret  string
	JWTIssuer  string
	WriteRoles []string

	IdempotencyTTL time.Duration

	KafkaBrokers    []string
	KafkaTopicStock string
	KafkaClientID   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// Load reads configuration. DATABASE_URL and JWT_SECRET are required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("APP_PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 25),
		DBMinConns:       getEnvInt("DB_MIN_CONNS", 5),
		StatementTimeout: getEnvDuration("TX_STATEMENT_TIMEOUT", 30*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", "procura"),
		// Empty means any authenticated user may write.
		WriteRoles: splitList(os.Getenv("WRITE_ROLES")),

		IdempotencyTTL: getEnvPositiveDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicStock: getEnv("KAFKA_TOPIC_STOCK", "procura.stock"),
		KafkaClientID:   getEnv("KAFKA_CLIENT_ID", "procura-worker"),

		OutboxPollInterval: getEnvPositiveDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
		OutboxBatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 100),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("required environment variable JWT_SECRET is not set")
	}
	return cfg, nil
}

// IsDevelopment reports whether the process runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvPositiveDuration is getEnvDuration for settings that drive tickers
// and expiries, where zero or a negative value is unusable.
func getEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if d := getEnvDuration(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
