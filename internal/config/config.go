package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"catalog-backend/internal/infrastructure/database"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	LogLevel    string
	CORSOrigin  string // origin của SPA front end, rỗng = tắt CORS
}

// DatabaseConfig: kết nối + pool lấy từ LoadDatabaseConfig, chỉ parse một lần
type DatabaseConfig struct {
	database.DBConfig
	AutoMigrate bool
}

type RedisConfig struct {
	Host            string
	Password        string
	DB              int
	SessionCacheTTL time.Duration
}

// AuthConfig cấu hình session cookie và tham số argon2id
type AuthConfig struct {
	CookieName    string
	CookieSecure  bool
	CookieMaxAge  int // seconds, 0 = session cookie
	Argon2Memory  uint32
	Argon2Time    uint32
	Argon2Threads uint8
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			CORSOrigin:  getEnv("CORS_ORIGIN", ""),
		},
		Database: DatabaseConfig{
			DBConfig:    *dbConfig,
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:            getEnv("REDIS_HOST", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvInt("REDIS_DB", 0),
			SessionCacheTTL: getEnvDuration("REDIS_SESSION_TTL", 15*time.Minute),
		},
		Auth: AuthConfig{
			CookieName:    getEnv("AUTH_COOKIE_NAME", "token"),
			CookieSecure:  getEnvBool("AUTH_COOKIE_SECURE", true),
			CookieMaxAge:  getEnvInt("AUTH_COOKIE_MAX_AGE", 0),
			Argon2Memory:  uint32(getEnvInt("AUTH_ARGON2_MEMORY_KB", 64*1024)),
			Argon2Time:    uint32(getEnvInt("AUTH_ARGON2_TIME", 1)),
			Argon2Threads: uint8(getEnvInt("AUTH_ARGON2_THREADS", 4)),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("AUTH_COOKIE_NAME must not be empty")
	}
	if c.Auth.Argon2Memory == 0 || c.Auth.Argon2Time == 0 || c.Auth.Argon2Threads == 0 {
		return fmt.Errorf("argon2 parameters must be positive")
	}

	// Production environment phải có DB password và secure cookie
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if !c.Auth.CookieSecure {
			return fmt.Errorf("AUTH_COOKIE_SECURE must be true in production")
		}
	}

	return nil
}

// DatabaseURL là DSN của pool, migrator dùng chung để hai bên không lệch nhau
func (c *Config) DatabaseURL() string {
	return c.Database.ConnectionString()
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
