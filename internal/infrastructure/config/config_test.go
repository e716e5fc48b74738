package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "files-storage", cfg.Storage.Root)
	assert.Equal(t, filepath.Join("config", "users.json"), cfg.Storage.UsersPath())
	assert.Equal(t, filepath.Join("config", "folders.json"), cfg.Storage.FoldersPath())
	assert.Equal(t, []string{"/media", "/mnt", "/run/media", "/Volumes"}, cfg.Storage.ExternalPrefixes)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Auth.TrustHeader)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 10*time.Minute, cfg.Operations.Retention)
	assert.Equal(t, 4, cfg.Operations.BulkConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"STORAGE_ROOT":       "/srv/files",
		"CONFIG_DIR":         "/etc/panel",
		"USERS_FILE":         "users.yaml",
		"EXTERNAL_PREFIXES":  "/media,/srv/mounts",
		"JWT_SECRET":         "s3cret",
		"AUTH_TRUST_HEADER":  "true",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"CORS_ORIGINS":       "https://panel.local,https://admin.local",
		"OP_RETENTION":       "90s",
		"BULK_CONCURRENCY":   "8",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "/srv/files", cfg.Storage.Root)
	assert.Equal(t, filepath.Join("/etc/panel", "users.yaml"), cfg.Storage.UsersPath())
	assert.Equal(t, []string{"/media", "/srv/mounts"}, cfg.Storage.ExternalPrefixes)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.TrustHeader)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"https://panel.local", "https://admin.local"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 90*time.Second, cfg.Operations.Retention)
	assert.Equal(t, 8, cfg.Operations.BulkConcurrency)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("BULK_CONCURRENCY", "0")
	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 4, cfg.Operations.BulkConcurrency)
}

func TestLoadRejectsMalformed(t *testing.T) {
	t.Setenv("OP_RETENTION", "soon")
	_, err := Load()
	assert.Error(t, err)
}
