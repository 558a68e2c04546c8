package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Redis   RedisConfig

	// Environment is "development", "test", or "production". Production
	// suppresses error detail in responses and logs.
	Environment string
	LogLevel    string

	// Stubs accepted for forward compatibility with the hosted platform;
	// nothing reads them yet beyond validation.
	IdentityProviderID string
	MediaBucket        string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes and scrapes).
	HealthPort string
}

// StorageConfig holds DynamoDB configuration.
type StorageConfig struct {
	Region    string
	TableName string

	// Endpoint overrides the DynamoDB endpoint for local emulation.
	Endpoint string

	// Static credentials for local emulation; empty means the default
	// AWS credential chain.
	AccessKey string
	SecretKey string
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// RedisConfig holds the optional Redis connection used by the auth-route
// rate limiter. An empty URL disables rate limiting.
type RedisConfig struct {
	URL               string
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables and validates it.
// Invalid configuration halts startup before any port is bound.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SHEPHERD_HOST", "0.0.0.0"),
			Port:            getEnv("SHEPHERD_PORT", "8080"),
			ReadTimeout:     getEnvDuration("SHEPHERD_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SHEPHERD_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SHEPHERD_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SHEPHERD_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("SHEPHERD_HEALTH_PORT", "9090"),
		},
		Storage: StorageConfig{
			Region:    getEnv("SHEPHERD_AWS_REGION", "us-east-1"),
			TableName: getEnv("SHEPHERD_TABLE_NAME", "shepherd"),
			Endpoint:  getEnv("SHEPHERD_DYNAMODB_ENDPOINT", ""),
			AccessKey: getEnv("SHEPHERD_AWS_ACCESS_KEY", ""),
			SecretKey: getEnv("SHEPHERD_AWS_SECRET_KEY", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("SHEPHERD_JWT_SECRET", ""),
			TokenTTL:   getEnvDuration("SHEPHERD_TOKEN_TTL", 7*24*time.Hour),
			BcryptCost: getEnvInt("SHEPHERD_BCRYPT_COST", 12),
		},
		Redis: RedisConfig{
			URL:               getEnv("SHEPHERD_REDIS_URL", ""),
			RequestsPerWindow: getEnvInt("SHEPHERD_RATE_LIMIT_REQUESTS", 20),
			WindowDuration:    getEnvDuration("SHEPHERD_RATE_LIMIT_WINDOW", time.Minute),
		},
		Environment:        getEnv("SHEPHERD_ENV", "development"),
		LogLevel:           getEnv("SHEPHERD_LOG_LEVEL", "info"),
		IdentityProviderID: getEnv("SHEPHERD_IDP_CLIENT_ID", ""),
		MediaBucket:        getEnv("SHEPHERD_MEDIA_BUCKET", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration can run a server.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Storage.Region == "" {
		return fmt.Errorf("AWS region is required")
	}
	if c.Storage.TableName == "" {
		return fmt.Errorf("table name is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT secret must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, test, or production)", c.Environment)
	}

	if c.Redis.URL != "" {
		if c.Redis.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requests per window must be positive")
		}
		if c.Redis.WindowDuration <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	return nil
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
