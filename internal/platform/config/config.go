// Package config builds process configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Addr           string
	LogLevel       string
	AdminJWTSecret string

	// RunnerURL is the base URL of the external Flow Runner.
	RunnerURL string

	// NotifierURL is the base URL of the notification delivery service.
	// Empty selects log-only notifications.
	NotifierURL string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig configures the ledger/policy/audit database. An empty URL
// selects the in-memory stores (single-node dev).
type PostgresConfig struct {
	URL string
}

// RedisConfig configures the durable timer store. An empty URL selects the
// in-memory timer store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink. Empty brokers
// disable the sink; the audit store remains the durability anchor.
type KafkaConfig struct {
	Brokers []string
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:           envOr("FLOWGUARD_ADDR", ":8080"),
		LogLevel:       envOr("FLOWGUARD_LOG_LEVEL", "info"),
		AdminJWTSecret: os.Getenv("FLOWGUARD_ADMIN_JWT_SECRET"),
		RunnerURL:      os.Getenv("FLOWGUARD_RUNNER_URL"),
		NotifierURL:    os.Getenv("FLOWGUARD_NOTIFIER_URL"),
		Postgres: PostgresConfig{
			URL: os.Getenv("FLOWGUARD_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("FLOWGUARD_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if cfg.AdminJWTSecret == "" {
		return Config{}, fmt.Errorf("FLOWGUARD_ADMIN_JWT_SECRET is required")
	}
	if cfg.RunnerURL == "" {
		return Config{}, fmt.Errorf("FLOWGUARD_RUNNER_URL is required")
	}

	if brokers := os.Getenv("FLOWGUARD_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	if raw := os.Getenv("FLOWGUARD_REDIS_POOL_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return Config{}, fmt.Errorf("invalid FLOWGUARD_REDIS_POOL_SIZE %q", raw)
		}
		cfg.Redis.PoolSize = size
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
