package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minStorageSecretLen = 32

// Config holds client configuration
type Config struct {
	APIBaseURL     string
	Environment    string // development, staging, production
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	// APIRateLimit is requests per second; 0 disables client-side throttling
	APIRateLimit float64
	APIRateBurst int

	StorageDriver    string // memory, file, postgres
	StoragePath      string
	StorageSecret    string
	StorageNamespace string
	DatabaseURL      string

	ContractValidation string // off, warn, strict
	MaxPageSize        int
	SearchDebounce     time.Duration
}

// Load reads .env (if present) and the environment, then validates
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:5215"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "warn"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		StorageDriver:      getEnv("STORAGE_DRIVER", "file"),
		StoragePath:        getEnv("STORAGE_PATH", defaultStoragePath()),
		StorageSecret:      getEnv("STORAGE_SECRET", ""),
		StorageNamespace:   getEnv("STORAGE_NAMESPACE", "default"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ContractValidation: getEnv("CONTRACT_VALIDATION", "off"),
	}

	var errs []error
	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SearchDebounce, err = getDuration("SEARCH_DEBOUNCE", 300*time.Millisecond); err != nil {
		errs = append(errs, err)
	}
	if cfg.APIRateLimit, err = getFloat("API_RATE_LIMIT", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.APIRateBurst, err = getInt("API_RATE_BURST", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxPageSize, err = getInt("MAX_PAGE_SIZE", 100); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration for security and correctness
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL (got %q)", c.APIBaseURL)
	}

	switch c.StorageDriver {
	case "memory", "file", "postgres":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be memory, file or postgres (got %q)", c.StorageDriver)
	}
	switch c.ContractValidation {
	case "off", "warn", "strict":
	default:
		return fmt.Errorf("CONTRACT_VALIDATION must be off, warn or strict (got %q)", c.ContractValidation)
	}

	if c.StorageDriver == "file" && c.StoragePath == "" {
		return fmt.Errorf("STORAGE_PATH must be set for the file driver")
	}
	if c.StorageDriver == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set for the postgres driver")
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be positive (got %d)", c.MaxPageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive (got %s)", c.RequestTimeout)
	}

	// Production requires TLS and an encrypted session file
	if c.IsProduction() {
		if u.Scheme != "https" {
			return fmt.Errorf("API_BASE_URL must use https in production")
		}
		if c.StorageDriver == "file" && len(c.StorageSecret) < minStorageSecretLen {
			return fmt.Errorf("STORAGE_SECRET must be at least %d characters in production (got %d)",
				minStorageSecretLen, len(c.StorageSecret))
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == ""
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".rooms-client.json"
	}
	return dir + string(os.PathSeparator) + "rooms-client" + string(os.PathSeparator) + "state.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
