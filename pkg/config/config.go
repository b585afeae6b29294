package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis (candidate cache)
	Redis RedisConfig

	// Analysis defaults. 엔진에는 항상 명시적 파라미터로 전달됨
	Analysis AnalysisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the candidate cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool

	CandidateTTL time.Duration
	TriggerTTL   time.Duration
}

// AnalysisConfig holds default analysis parameters.
// 외부 설정 저장소의 값을 기동 시 읽어오는 자리. 코어 엔진은 이 값을
// contracts.Params로 변환해 항상 명시적으로 전달받는다.
type AnalysisConfig struct {
	ReturnThreshold   float64
	VolumeThreshold   float64
	MinCorrelation    float64
	SignificanceLevel float64
	MaxLagDaily       int
	MaxLagWeekly      int
	MaxLagMonthly     int
	TopN              int
	Workers           int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			CandidateTTL: getEnvAsDuration("CANDIDATE_CACHE_TTL", "1h"),
			TriggerTTL:   getEnvAsDuration("TRIGGER_CACHE_TTL", "24h"),
		},

		Analysis: AnalysisConfig{
			ReturnThreshold:   getEnvAsFloat("RETURN_THRESHOLD", 0.02),
			VolumeThreshold:   getEnvAsFloat("VOLUME_THRESHOLD", 1.5),
			MinCorrelation:    getEnvAsFloat("MIN_CORRELATION", 0.30),
			SignificanceLevel: getEnvAsFloat("SIGNIFICANCE_LEVEL", 0.05),
			MaxLagDaily:       getEnvAsInt("MAX_LAG_DAILY", 10),
			MaxLagWeekly:      getEnvAsInt("MAX_LAG_WEEKLY", 6),
			MaxLagMonthly:     getEnvAsInt("MAX_LAG_MONTHLY", 3),
			TopN:              getEnvAsInt("TOP_N", 10),
			Workers:           getEnvAsInt("ANALYSIS_WORKERS", 8),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
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
