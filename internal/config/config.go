package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the configurator service.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Identity  IdentityConfig
	Blob      BlobConfig
	AutoBuild AutoBuildConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Mode         string // "development", "production"
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis configuration, backing the identity token cache
// and a best-effort checkout rate limiter.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// IdentityConfig points at the external identity provider that issues the
// bearer tokens this service verifies but never mints.
type IdentityConfig struct {
	ProviderURL   string
	ServiceKey    string
	TokenCacheTTL time.Duration
}

// BlobConfig names the bucket component image references are resolved
// against.
type BlobConfig struct {
	BucketName string
	PublicBase string
}

// AutoBuildConfig exposes the Auto-Builder's tunables as configuration.
type AutoBuildConfig struct {
	Deadline          time.Duration
	MinFetchBudget    time.Duration
	PSUHeadroomCheck  float64
	PSUHeadroomPick   float64
	MinGPUBudgetShare float64
}

// RateLimitConfig gates the checkout surface against a runaway client. It
// reuses the shared Redis connection rather than opening one of its own.
type RateLimitConfig struct {
	CheckoutRequestsPerMinute int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 15*time.Second),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Identity: IdentityConfig{
			ProviderURL:   getEnv("IDENTITY_PROVIDER_URL", ""),
			ServiceKey:    getEnv("IDENTITY_SERVICE_KEY", ""),
			TokenCacheTTL: getDurationEnv("IDENTITY_TOKEN_CACHE_TTL", 60*time.Second),
		},
		Blob: BlobConfig{
			BucketName: getEnv("BLOB_BUCKET_NAME", ""),
			PublicBase: getEnv("BLOB_PUBLIC_BASE_URL", ""),
		},
		AutoBuild: AutoBuildConfig{
			Deadline:          getDurationEnv("AUTOBUILD_DEADLINE", 10*time.Second),
			MinFetchBudget:    getDurationEnv("AUTOBUILD_MIN_FETCH_BUDGET", 200*time.Millisecond),
			PSUHeadroomCheck:  getFloatEnv("PSU_HEADROOM_CHECK", 1.25),
			PSUHeadroomPick:   getFloatEnv("PSU_HEADROOM_PICK", 1.3),
			MinGPUBudgetShare: getFloatEnv("MIN_GPU_BUDGET_SHARE", 0.25),
		},
		RateLimit: RateLimitConfig{
			CheckoutRequestsPerMinute: getIntEnv("CHECKOUT_RATE_LIMIT_PER_MINUTE", 10),
		},
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration. These four have no default — startup
// fails fast rather than silently running against the wrong provider/bucket.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Identity.ProviderURL == "" {
		return fmt.Errorf("IDENTITY_PROVIDER_URL is required")
	}

	if c.Identity.ServiceKey == "" {
		return fmt.Errorf("IDENTITY_SERVICE_KEY is required")
	}

	if c.Blob.BucketName == "" {
		return fmt.Errorf("BLOB_BUCKET_NAME is required")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
