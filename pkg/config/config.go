package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (preset persistence; optional)
	Database DatabaseConfig

	// Redis (result/correlation caching; optional)
	Redis RedisConfig

	// Correlation import service
	Correlations CorrelationsConfig

	// Engine tunables
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
// An empty URL disables preset persistence.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// CorrelationsConfig holds the external correlation service configuration.
type CorrelationsConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RefreshSchedule string // cron spec; empty disables the refresh job
}

// EngineConfig holds tunables for the optimizer and simulator.
type EngineConfig struct {
	FrontierSamples     int           // random portfolios drawn per frontier
	DefaultCorrelation  float64       // pairwise default for new asset pairs
	PathSampleLimit     int           // full paths retained in a result
	DrawdownSamplePaths int           // paths scanned for max drawdown
	SimWorkers          int           // 0 = GOMAXPROCS
	CacheTTL            time.Duration // frontier cache TTL
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv in the codebase.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
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

		Correlations: CorrelationsConfig{
			BaseURL:         getEnv("CORRELATIONS_BASE_URL", ""),
			Timeout:         getEnvAsDuration("CORRELATIONS_TIMEOUT", "10s"),
			RefreshSchedule: getEnv("CORRELATIONS_REFRESH_SCHEDULE", ""),
		},

		Engine: EngineConfig{
			FrontierSamples:     getEnvAsInt("ENGINE_FRONTIER_SAMPLES", 1000),
			DefaultCorrelation:  getEnvAsFloat("ENGINE_DEFAULT_CORRELATION", 0.4),
			PathSampleLimit:     getEnvAsInt("ENGINE_PATH_SAMPLE_LIMIT", 50),
			DrawdownSamplePaths: getEnvAsInt("ENGINE_DRAWDOWN_SAMPLE_PATHS", 100),
			SimWorkers:          getEnvAsInt("ENGINE_SIM_WORKERS", 0),
			CacheTTL:            getEnvAsDuration("ENGINE_CACHE_TTL", "10m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration consistency.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.FrontierSamples < 1 {
		return fmt.Errorf("ENGINE_FRONTIER_SAMPLES must be positive")
	}
	if c.Engine.DefaultCorrelation < -1 || c.Engine.DefaultCorrelation > 1 {
		return fmt.Errorf("ENGINE_DEFAULT_CORRELATION must be in [-1, 1]")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{".env"}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
