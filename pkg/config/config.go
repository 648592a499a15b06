package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the analyst
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env      string // development, staging, production
	Timezone string

	// PollInterval is the scheduler tick period
	PollInterval time.Duration

	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig

	APIPort string

	// Logging
	LogLevel  string
	LogFormat string

	location *time.Location
}

// StorageConfig holds file locations
type StorageConfig struct {
	DataDir        string
	KnowledgeDir   string
	PerformanceDoc string // document name inside DataDir (or the documents table)
	ProfilePath    string
	ExportPath     string // outside the primary storage, read by an external consumer
}

// DatabaseConfig holds PostgreSQL configuration.
// An empty URL keeps aggregate documents on the local filesystem.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// LLMConfig holds text-generation collaborator settings
type LLMConfig struct {
	APIKey        string
	Model         string
	MaxTokens     int
	Timeout       time.Duration
	RatePerMinute int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		Env:          getEnv("ENV", "development"),
		Timezone:     getEnv("TIMEZONE", "America/New_York"),
		PollInterval: getEnvAsDuration("POLL_INTERVAL", "60s"),

		Storage: StorageConfig{
			DataDir:        dataDir,
			KnowledgeDir:   getEnv("KNOWLEDGE_DIR", filepath.Join(dataDir, "knowledge")),
			PerformanceDoc: getEnv("PERFORMANCE_DOC", "performance"),
			ProfilePath:    getEnv("PROFILE_PATH", filepath.Join(dataDir, "profile.yaml")),
			ExportPath:     getEnv("EXPORT_PATH", filepath.Join("..", "shared", "analyst-snapshot.md")),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LLM: LLMConfig{
			APIKey:        getEnv("ANTHROPIC_API_KEY", ""),
			Model:         getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", "3m"),
			RatePerMinute: getEnvAsInt("LLM_RATE_PER_MINUTE", 10),
		},

		APIPort: getEnv("API_PORT", "8089"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the configured timezone, falling back to UTC
// for configs that were built by hand and never validated.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	if strings.TrimSpace(c.Storage.ExportPath) == "" {
		return fmt.Errorf("EXPORT_PATH is required")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
