// Package config provides environment-backed configuration for the
// application processes
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the tunable settings shared by the server and worker
// processes. Values come from the environment, with defaults suitable for
// local development.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"scenergy"`
	DBSSL      bool   `env:"DB_SSL" envDefault:"false"`

	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	PollInterval      time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"5s"`
	HeartbeatInterval time.Duration `env:"WORKER_HEARTBEAT_INTERVAL" envDefault:"15s"`
	HandlerTimeout    time.Duration `env:"WORKER_HANDLER_TIMEOUT" envDefault:"10m"`
	LeaseTimeout      time.Duration `env:"QUEUE_LEASE_TIMEOUT" envDefault:"5m"`
	BackoffBase       time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"30s"`
	BackoffMax        time.Duration `env:"QUEUE_BACKOFF_MAX" envDefault:"1h"`

	GenAIBaseURL string        `env:"GENAI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GenAIAPIKey  string        `env:"GENAI_API_KEY"`
	GenAITimeout time.Duration `env:"GENAI_TIMEOUT" envDefault:"5m"`

	SyncTimeout time.Duration `env:"STORE_SYNC_TIMEOUT" envDefault:"2m"`
}

// Load parses configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
