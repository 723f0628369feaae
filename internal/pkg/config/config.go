package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Redmine RedmineConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Retry   RetryConfig
}

type RedmineConfig struct {
	URL       string `env:"REDMINE_URL"`
	APIKey    string `env:"REDMINE_API_KEY"`
	ProjectID string `env:"REDMINE_PROJECT_ID, default=1"`
	// Timeout bounds every single call to the remote service.
	Timeout time.Duration `env:"REDMINE_TIMEOUT, default=15s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ticketing"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type RetryConfig struct {
	MaxAttempts int           `env:"RETRY_MAX_ATTEMPTS, default=3"`
	BaseDelay   time.Duration `env:"RETRY_BASE_DELAY,   default=200ms"`
	Multiplier  float64       `env:"RETRY_MULTIPLIER,   default=2.0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return &cfg
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Redmine.URL == "" {
		return fmt.Errorf("REDMINE_URL is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1")
	}
	return nil
}
