package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds application configuration
type Config struct {
	Port        string
	Environment string // development, staging, production

	LogLevel  string
	LogFormat string

	// Remote storefront API
	APIBaseURL      string
	RemoteTimeout   time.Duration
	RemoteRateLimit float64
	RemoteBurst     int

	// Durable local state
	StorageDriver    string
	StorageDir       string
	StorageNamespace string
	DatabaseURL      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	// Optional event broker; empty disables publishing
	RabbitMQURL string

	ReconcileTimeout  time.Duration
	AllowedOrigins    string
	OpenAPIValidation bool

	// WriteTimeout overrides the derived HTTP server write timeout when set
	WriteTimeout time.Duration
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

// FromEnv reads the configuration without loading .env or validating
func FromEnv() *Config {
	env := getEnv("ENVIRONMENT", "development")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:5000"),
		RemoteTimeout:   getDuration("REMOTE_TIMEOUT", 10*time.Second),
		RemoteRateLimit: getFloat("REMOTE_RATE_LIMIT", 20),
		RemoteBurst:     getInt("REMOTE_BURST", 40),

		StorageDriver:    getEnv("STORAGE_DRIVER", StorageFile),
		StorageDir:       getEnv("STORAGE_DIR", ".storefront"),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "default"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getInt("REDIS_DB", 0),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		ReconcileTimeout:  getDuration("RECONCILE_TIMEOUT", 15*time.Second),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080"),
		OpenAPIValidation: getBool("OPENAPI_VALIDATION", env != "production" && env != "prod"),

		WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 0),
	}
}

// Validate checks configuration for correctness
func (c *Config) Validate() error {
	base, err := url.Parse(c.APIBaseURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL (got %q)", c.APIBaseURL)
	}

	switch c.StorageDriver {
	case StorageFile:
		if c.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR is required for the file storage driver")
		}
	case StorageMemory:
		if c.IsProduction() {
			return fmt.Errorf("the memory storage driver loses the cart on restart and is not allowed in production")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if c.ReconcileTimeout <= 0 {
		return fmt.Errorf("RECONCILE_TIMEOUT must be positive")
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT must not be negative")
	}
	if c.WriteTimeout > 0 && c.WriteTimeout < c.RemoteTimeout+c.ReconcileTimeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT must cover REMOTE_TIMEOUT plus RECONCILE_TIMEOUT (%s)",
			c.RemoteTimeout+c.ReconcileTimeout)
	}

	if c.IsProduction() {
		// The bearer token travels to this host
		if base.Scheme != "https" {
			return fmt.Errorf("API_BASE_URL must use https in production")
		}

		if c.AllowedOrigins != "" {
			log.Println("WARNING: Ensure ALLOWED_ORIGINS uses HTTPS in production")
		}
	}

	return nil
}

// remote read retries: attempts and the sum of their linear backoff
const (
	readAttempts = 3
	readBackoff  = 1500 * time.Millisecond
	writeSlack   = 5 * time.Second
)

// HTTPWriteTimeout is how long a handler may take to answer. Login waits for
// one remote call and then the reconcile; checkout makes a retried read and
// two remote writes. The larger of the two wins.
func (c *Config) HTTPWriteTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	login := c.RemoteTimeout + c.ReconcileTimeout
	checkout := readAttempts*c.RemoteTimeout + readBackoff + 2*c.RemoteTimeout
	return max(login, checkout) + writeSlack
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
