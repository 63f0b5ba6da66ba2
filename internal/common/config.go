// Package common provides shared configuration, logging, and version utilities.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the market server.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Update      UpdateConfig  `toml:"update"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Timeout   string `toml:"timeout"` // per-operation timeout, duration string
}

// GetTimeout parses and returns the per-operation storage timeout.
func (c *StorageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// UpdateConfig holds update-cycle configuration.
type UpdateConfig struct {
	Schedule   string `toml:"schedule"`    // cron expression for the periodic cycle
	Interval   string `toml:"interval"`    // nominal cycle period, used for next-update estimates
	HistoryCap int    `toml:"history_cap"` // max retained price history entries per asset
	WriteRate  int    `toml:"write_rate"`  // persisted writes per second during a cycle
}

// GetInterval parses and returns the nominal cycle period.
func (c *UpdateConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5001,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "market",
			Database:  "market",
			Username:  "root",
			Password:  "root",
			Timeout:   "30s",
		},
		Update: UpdateConfig{
			Schedule:   "*/10 * * * *",
			Interval:   "10m",
			HistoryCap: 2000,
			WriteRate:  25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies MARKET_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MARKET_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MARKET_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MARKET_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MARKET_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("MARKET_DB_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if ns := os.Getenv("MARKET_DB_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("MARKET_DB_DATABASE"); db != "" {
		config.Storage.Database = db
	}
	if user := os.Getenv("MARKET_DB_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("MARKET_DB_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	if sched := os.Getenv("MARKET_UPDATE_SCHEDULE"); sched != "" {
		config.Update.Schedule = sched
	}
	if interval := os.Getenv("MARKET_UPDATE_INTERVAL"); interval != "" {
		config.Update.Interval = interval
	}
	if histCap := os.Getenv("MARKET_HISTORY_CAP"); histCap != "" {
		if n, err := strconv.Atoi(histCap); err == nil && n > 0 {
			config.Update.HistoryCap = n
		}
	}
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
