package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "8080",
			HealthPort: "9090",
		},
		Storage: StorageConfig{
			Region:    "us-east-1",
			TableName: "shepherd",
		},
		Auth: AuthConfig{
			JWTSecret: "0123456789abcdef",
			TokenTTL:  7 * 24 * time.Hour,
		},
		Environment: "development",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHEPHERD_JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "shepherd", cfg.Storage.TableName)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHEPHERD_JWT_SECRET", "0123456789abcdef")
	t.Setenv("SHEPHERD_PORT", "3000")
	t.Setenv("SHEPHERD_TABLE_NAME", "shepherd-staging")
	t.Setenv("SHEPHERD_DYNAMODB_ENDPOINT", "http://localhost:8000")
	t.Setenv("SHEPHERD_TOKEN_TTL", "24h")
	t.Setenv("SHEPHERD_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "shepherd-staging", cfg.Storage.TableName)
	assert.Equal(t, "http://localhost:8000", cfg.Storage.Endpoint)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFailsWithoutJWTSecret(t *testing.T) {
	t.Setenv("SHEPHERD_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"same ports", func(c *Config) { c.Server.HealthPort = "8080" }, "must be different"},
		{"missing region", func(c *Config) { c.Storage.Region = "" }, "region"},
		{"missing table", func(c *Config) { c.Storage.TableName = "" }, "table name"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT secret"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 16"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "TTL"},
		{"bad environment", func(c *Config) { c.Environment = "staging" }, "invalid environment"},
		{"redis without window", func(c *Config) {
			c.Redis.URL = "redis://localhost:6379"
			c.Redis.RequestsPerWindow = 10
			c.Redis.WindowDuration = 0
		}, "window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}
