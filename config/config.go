package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is read from TECHSALLE_* environment variables, optionally seeded
// from a .env file in the working directory.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR"        default:":5000"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	Storage         string        `envconfig:"STORAGE"          default:"postgres"`
	Migrate         bool          `envconfig:"MIGRATE"          default:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT"       default:"json"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS"     default:"*"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES"   default:"10485760"`
	RateLimitRPS    int           `envconfig:"RATE_LIMIT_RPS"   default:"20"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"40"`
	RateLimitClean  time.Duration `envconfig:"RATE_LIMIT_CLEANUP" default:"1m"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX_CLIENTS" default:"10000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	DBMaxOpenConns  int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns  int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnLifetime  time.Duration `envconfig:"DB_CONN_LIFETIME"  default:"30m"`
}

const envPrefix = "TECHSALLE"

// Load reads the .env file if present and processes the environment.
func Load(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"http_addr":    cfg.HTTPAddr,
		"storage":      cfg.Storage,
		"log_level":    cfg.LogLevel,
		"database_set": cfg.DatabaseURL != "",
	}).Info("Configuration loaded")
	return &cfg, nil
}

// Validate normalises the storage choice and checks it can be satisfied.
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("TECHSALLE_DATABASE_URL is required when TECHSALLE_STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q: want %q or %q", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 || c.RateLimitMax < 0 {
		return errors.New("rate limit values cannot be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("TECHSALLE_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// NewLogger builds the process logger from a level name and a format
// ("json" or "text").
func NewLogger(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return logger, nil
}
