package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Vision    VisionConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// VisionConfig holds vision provider configuration.
// An empty APIKey runs the service in mock mode.
type VisionConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"` // bounds rate limiter wait and round trip

	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// CatalogConfig holds product catalog database configuration
type CatalogConfig struct {
	Driver   string        `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN      string        `mapstructure:"dsn"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// StorageConfig holds uploaded image storage configuration
type StorageConfig struct {
	ImageRoot string `mapstructure:"image_root"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// VisionConfigured reports whether live vision analysis is enabled
func (c *Config) VisionConfigured() bool {
	return c.Vision.APIKey != ""
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/seafresh/")

	// SEAFRESH_VISION_API_KEY -> vision.api_key
	v.SetEnvPrefix("SEAFRESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// Vision defaults
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://vision.googleapis.com/v1")
	v.SetDefault("vision.timeout", "30s")
	v.SetDefault("vision.requests_per_second", 5)
	v.SetDefault("vision.burst", 10)

	// Catalog defaults
	v.SetDefault("catalog.driver", "sqlite")
	v.SetDefault("catalog.dsn", "seafresh.db")
	v.SetDefault("catalog.cache_ttl", "1m")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")

	v.SetDefault("storage.image_root", "./uploads")

	v.SetDefault("ratelimit.per_ip", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis' (set SEAFRESH_CACHE_REDIS_URL)")
	}

	if config.Vision.Timeout <= 0 {
		return fmt.Errorf("vision timeout must be positive, got: %s", config.Vision.Timeout)
	}

	if config.Catalog.Driver != "sqlite" && config.Catalog.Driver != "postgres" {
		return fmt.Errorf("catalog driver must be 'sqlite' or 'postgres', got: %s", config.Catalog.Driver)
	}

	if config.Catalog.Driver == "postgres" && config.Catalog.DSN == "" {
		return fmt.Errorf("catalog DSN is required when driver is 'postgres' (set SEAFRESH_CATALOG_DSN)")
	}

	if config.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog cache TTL must not be negative, got: %s", config.Catalog.CacheTTL)
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got: %d", config.Server.MaxUploadBytes)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
