package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Asset store credentials
	Cloudinary CloudinaryConfig

	// Draft cache backend selection
	Cache CacheConfig

	// Database configuration (postgres cache backend)
	Database DatabaseConfig

	// Redis configuration (redis cache backend)
	Redis RedisConfig

	// Session gate configuration
	Auth AuthConfig

	// Upload validation limits
	Upload UploadConfig

	// Background cache sync
	Sync SyncConfig

	// Contact form delivery
	SMTP SMTPConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LoginRoute      string // where the dashboard guard redirects to
}

// CloudinaryConfig holds asset store settings
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	APIPrefix    string // overrides the SDK's API host, empty keeps its default
	RatePerSec   float64
	Burst        int
	PageSize     int
}

// CacheConfig selects the draft cache backend
type CacheConfig struct {
	Backend string // "memory", "postgres" or "redis"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// AuthConfig holds identity provider and token settings
type AuthConfig struct {
	ProviderURL string
	ProviderKey string
	JWTSecret   string
	TokenTTL    time.Duration
	AdminEmails []string
}

// UploadConfig holds upload validation settings
type UploadConfig struct {
	MaxBytes     int64
	AllowedTypes []string
}

// SyncConfig holds cache sync worker settings
type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
}

// SMTPConfig holds contact form delivery settings
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

const defaultJWTSecret = "change-me-in-production"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			LoginRoute:      getEnv("LOGIN_ROUTE", "/admin"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "portfolio_upload"),
			APIPrefix:    getEnv("CLOUDINARY_UPLOAD_PREFIX", ""),
			RatePerSec:   getFloatEnv("STORE_RATE_PER_SEC", 5),
			Burst:        getIntEnv("STORE_BURST", 10),
			PageSize:     getIntEnv("STORE_PAGE_SIZE", 100),
		},
		Cache: CacheConfig{
			Backend: strings.ToLower(getEnv("CACHE_BACKEND", "memory")),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "portfolio"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getIntEnv("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "portfolio:"),
		},
		Auth: AuthConfig{
			ProviderURL: getEnv("AUTH_PROVIDER_URL", ""),
			ProviderKey: getEnv("AUTH_PROVIDER_KEY", ""),
			JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTL:    getDurationEnv("JWT_TTL", 12*time.Hour),
			AdminEmails: getListEnv("ADMIN_EMAILS", []string{"ceo@vansiii.com"}),
		},
		Upload: UploadConfig{
			MaxBytes:     getInt64Env("UPLOAD_MAX_BYTES", 10*1024*1024), // 10MB
			AllowedTypes: getListEnv("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png"}),
		},
		Sync: SyncConfig{
			Enabled:  getBoolEnv("SYNC_ENABLED", true),
			Interval: getDurationEnv("SYNC_INTERVAL", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@vansiii.com"),
			To:       getEnv("CONTACT_TO", "ceo@vansiii.com"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Cloudinary.CloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required")
	}
	if c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		return fmt.Errorf("CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	if c.Cloudinary.UploadPreset == "" {
		return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET is required")
	}
	switch c.Cache.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, postgres, redis")
	}
	if c.Cache.Backend == "postgres" && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required for the postgres cache backend")
	}
	if len(c.Auth.AdminEmails) == 0 {
		return fmt.Errorf("ADMIN_EMAILS must name at least one address")
	}
	if os.Getenv("ENV") == "production" && c.Auth.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping empty entries
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
