package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend constants
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Authorization code settings
	AuthCodeExpiration time.Duration // Code TTL (default: 1h per RFC reference value)

	// Access token / session settings
	TokenExpiration time.Duration // Lifetime of issued sessions (default: 1h)

	// Login session cookie
	SessionSecret string

	// Session cache
	CacheBackend    string // "memory" or "redis"
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SessionCacheTTL time.Duration

	// Metrics
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "registry.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:8080"),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		AuthCodeExpiration: getEnvDuration("AUTH_CODE_EXPIRATION", time.Hour),
		TokenExpiration:    getEnvDuration("TOKEN_EXPIRATION", time.Hour),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),

		CacheBackend:    getEnv("CACHE_BACKEND", CacheBackendMemory),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		SessionCacheTTL: getEnvDuration("SESSION_CACHE_TTL", 5*time.Minute),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
	}
}

// Validate checks that the configuration is usable before startup.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %s", c.DatabaseDriver)
	}
	if c.CacheBackend != CacheBackendMemory && c.CacheBackend != CacheBackendRedis {
		return fmt.Errorf("unsupported cache backend: %s", c.CacheBackend)
	}
	if c.AuthCodeExpiration <= 0 {
		return fmt.Errorf("AUTH_CODE_EXPIRATION must be positive")
	}
	if c.TokenExpiration <= 0 {
		return fmt.Errorf("TOKEN_EXPIRATION must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
