package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data artifacts consumed at startup
	Data DataConfig

	// Analytics policy
	Sampling   SamplingConfig
	Similarity SimilarityConfig
	Drift      DriftConfig

	// Database (decision audit trail)
	Database DatabaseConfig

	// Redis (prediction cache)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig holds the paths of the serving artifacts
type DataConfig struct {
	SnapshotPath  string // scoring dataset snapshot (CSV)
	ModelPath     string // trained model artifact (JSON)
	ReferencePath string // drift reference population snapshot (CSV)
	CurrentPath   string // drift current population snapshot (CSV)
}

// SamplingConfig holds the seeded-sampling policy
type SamplingConfig struct {
	GlobalExplainSize int
	GlobalExplainSeed int64
	ClientSampleSize  int
	ClientSampleSeed  int64
}

// SimilarityConfig holds nearest-neighbor policy
type SimilarityConfig struct {
	DefaultK  int
	Normalize bool // z-score mode; false keeps the source-compatible raw distance
}

// DriftConfig holds drift-detection policy
type DriftConfig struct {
	SampleFraction   float64
	SampleSeed       int64
	PValueThreshold  float64
	DatasetThreshold float64 // share of drifted columns that flips the dataset flag
	Schedule         string  // cron expression (with seconds) for recomputation
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
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

// AuditEnabled reports whether the decision audit trail is configured
func (c *Config) AuditEnabled() bool {
	return c.Database.URL != ""
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			SnapshotPath:  getEnv("DATA_SNAPSHOT_PATH", "data/test_df.csv"),
			ModelPath:     getEnv("MODEL_PATH", "data/model.json"),
			ReferencePath: getEnv("DRIFT_REFERENCE_PATH", "data/reference_df.csv"),
			CurrentPath:   getEnv("DRIFT_CURRENT_PATH", "data/current_df.csv"),
		},

		Sampling: SamplingConfig{
			GlobalExplainSize: getEnvAsInt("GLOBAL_EXPLAIN_SAMPLE_SIZE", 500),
			GlobalExplainSeed: int64(getEnvAsInt("GLOBAL_EXPLAIN_SEED", 42)),
			ClientSampleSize:  getEnvAsInt("CLIENT_SAMPLE_SIZE", 1000),
			ClientSampleSeed:  int64(getEnvAsInt("CLIENT_SAMPLE_SEED", 42)),
		},

		Similarity: SimilarityConfig{
			DefaultK:  getEnvAsInt("NEIGHBORS_DEFAULT_K", 10),
			Normalize: getEnvAsBool("SIMILARITY_NORMALIZE", false),
		},

		Drift: DriftConfig{
			SampleFraction:   getEnvAsFloat("DRIFT_SAMPLE_FRACTION", 1.0),
			SampleSeed:       int64(getEnvAsInt("DRIFT_SAMPLE_SEED", 42)),
			PValueThreshold:  getEnvAsFloat("DRIFT_PVALUE_THRESHOLD", 0.05),
			DatasetThreshold: getEnvAsFloat("DRIFT_DATASET_THRESHOLD", 0.5),
			Schedule:         getEnv("DRIFT_SCHEDULE", "0 0 * * * *"),
		},

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
			CacheTTL: getEnvAsDuration("CACHE_TTL", "5m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Data.SnapshotPath == "" {
		return fmt.Errorf("DATA_SNAPSHOT_PATH is required")
	}
	if c.Data.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Drift.SampleFraction <= 0 || c.Drift.SampleFraction > 1 {
		return fmt.Errorf("DRIFT_SAMPLE_FRACTION must be in (0, 1]")
	}
	if c.Drift.PValueThreshold <= 0 || c.Drift.PValueThreshold >= 1 {
		return fmt.Errorf("DRIFT_PVALUE_THRESHOLD must be in (0, 1)")
	}
	if c.Drift.DatasetThreshold < 0 || c.Drift.DatasetThreshold > 1 {
		return fmt.Errorf("DRIFT_DATASET_THRESHOLD must be in [0, 1]")
	}

	if c.Similarity.DefaultK <= 0 {
		return fmt.Errorf("NEIGHBORS_DEFAULT_K must be > 0")
	}
	if c.Sampling.GlobalExplainSize <= 0 {
		return fmt.Errorf("GLOBAL_EXPLAIN_SAMPLE_SIZE must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
