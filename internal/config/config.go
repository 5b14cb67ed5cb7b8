// Package config loads the server configuration from SPLITIFY_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "SPLITIFY"

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Store    string `envconfig:"STORE" default:"sqlite"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/splitify.db"`
	MongoURI string `envconfig:"MONGO_URI"`
	MongoDB  string `envconfig:"MONGO_DB" default:"splitify"`

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenDuration time.Duration `envconfig:"TOKEN_DURATION" default:"24h"`

	// RedisURL enables shared idempotency keys; empty keeps them in memory.
	RedisURL       string        `envconfig:"REDIS_URL"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	ActivityRetryAttempts int           `envconfig:"ACTIVITY_RETRY_ATTEMPTS" default:"3"`
	ActivityRetryBackoff  time.Duration `envconfig:"ACTIVITY_RETRY_BACKOFF" default:"20ms"`
	QueryConcurrency      int           `envconfig:"QUERY_CONCURRENCY" default:"4"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the given .env files (missing files are skipped) and then the
// environment. Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%s_DB_PATH is required for the sqlite store", EnvPrefix)
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%s_MONGO_URI is required for the mongo store", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown store %q: want memory, sqlite or mongo", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ActivityRetryAttempts < 1 {
		return fmt.Errorf("activity retry attempts must be at least 1")
	}
	if c.QueryConcurrency < 1 {
		return fmt.Errorf("query concurrency must be at least 1")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
