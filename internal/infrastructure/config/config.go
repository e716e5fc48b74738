// Package config loads the gateway configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Auth       AuthConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Operations OperationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig locates the storage root and the persisted documents.
type StorageConfig struct {
	Root             string   `envconfig:"STORAGE_ROOT" default:"files-storage"`
	ConfigDir        string   `envconfig:"CONFIG_DIR" default:"config"`
	UsersFile        string   `envconfig:"USERS_FILE" default:"users.json"`
	FoldersFile      string   `envconfig:"FOLDERS_FILE" default:"folders.json"`
	ExternalPrefixes []string `envconfig:"EXTERNAL_PREFIXES" default:"/media,/mnt,/run/media,/Volumes"`
}

// UsersPath is the user registry document
func (s StorageConfig) UsersPath() string {
	return filepath.Join(s.ConfigDir, s.UsersFile)
}

// FoldersPath is the protected folder document
func (s StorageConfig) FoldersPath() string {
	return filepath.Join(s.ConfigDir, s.FoldersFile)
}

// AuthConfig holds identity verification settings.
type AuthConfig struct {
	JWTSecret   string `envconfig:"JWT_SECRET"`
	JWTIssuer   string `envconfig:"JWT_ISSUER"`
	TrustHeader bool   `envconfig:"AUTH_TRUST_HEADER" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// OperationConfig tunes long running operations.
type OperationConfig struct {
	Retention       time.Duration `envconfig:"OP_RETENTION" default:"10m"`
	BulkConcurrency int           `envconfig:"BULK_CONCURRENCY" default:"4"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"1073741824"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Storage.Root == "":
		return fmt.Errorf("storage root cannot be empty")
	case c.Storage.ConfigDir == "":
		return fmt.Errorf("config dir cannot be empty")
	case c.Operations.BulkConcurrency < 1:
		return fmt.Errorf("bulk concurrency must be positive, got %d", c.Operations.BulkConcurrency)
	case c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond < 1:
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimit.RequestsPerSecond)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Root:             "files-storage",
			ConfigDir:        "config",
			UsersFile:        "users.json",
			FoldersFile:      "folders.json",
			ExternalPrefixes: []string{"/media", "/mnt", "/run/media", "/Volumes"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Operations: OperationConfig{
			Retention:       10 * time.Minute,
			BulkConcurrency: 4,
			MaxUploadBytes:  1 << 30,
		},
	}
}
