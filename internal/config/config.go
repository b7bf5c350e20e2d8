package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the EcoMetrics server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Upload   UploadConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type CacheConfig struct {
	// ReportTTL bounds staleness of cached report reads; writes also
	// invalidate explicitly.
	ReportTTL time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

type AuthConfig struct {
	// AdminKey bootstraps key management before any key exists in the
	// database. It carries the admin scope and no company binding.
	AdminKey          string
	RequestsPerMinute int
}

// Load reads configuration from the environment (and a .env file if one is
// present) and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("ECOMETRICS_PORT", 8080),
			Env:  envString("ECOMETRICS_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Cache: CacheConfig{
			ReportTTL: envDuration("REPORT_CACHE_TTL", 30*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Auth: AuthConfig{
			AdminKey:          os.Getenv("ECOMETRICS_ADMIN_KEY"),
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Auth.AdminKey == "" {
		return fmt.Errorf("ECOMETRICS_ADMIN_KEY is required")
	}
	if len(c.Auth.AdminKey) < 16 {
		return fmt.Errorf("ECOMETRICS_ADMIN_KEY must be at least 16 characters")
	}
	if c.Cache.ReportTTL <= 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must be positive")
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
