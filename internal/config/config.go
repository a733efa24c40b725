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

const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Storage
	StoreDriver string
	DataDir     string
	SQLitePath  string
	DatabaseURL string

	// Redis (optional, enables cross-process collection locks)
	RedisURL string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTemperature    float32
	GeminiConcurrentReqs int
	AITimeout            time.Duration

	// Content
	HistoryMaxFieldLen int
	ExamplesDelimiter  string

	// Rate limiting
	ToolsRateLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		StoreDriver:          strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverCSV)),
		DataDir:              dataDir,
		SQLitePath:           getEnvOrDefault("SQLITE_PATH", filepath.Join(dataDir, "studywai.db")),
		RedisURL:             getEnvOrDefault("REDIS_URL", ""),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash-lite-001"),
		GeminiTemperature:    getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.3),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		AITimeout:            getEnvAsDurationOrDefault("AI_TIMEOUT", 30*time.Second),
		HistoryMaxFieldLen:   getEnvAsIntOrDefault("HISTORY_MAX_FIELD_LEN", 500),
		ExamplesDelimiter:    getEnvOrDefault("EXAMPLES_DELIMITER", "|"),
		ToolsRateLimit:       getEnvAsIntOrDefault("TOOLS_RATE_LIMIT", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.StoreDriver == DriverPostgres {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverCSV, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want csv, sqlite or postgres)", c.StoreDriver)
	}
	if c.HistoryMaxFieldLen <= 0 {
		return fmt.Errorf("HISTORY_MAX_FIELD_LEN must be positive, got %d", c.HistoryMaxFieldLen)
	}
	if c.ExamplesDelimiter == "" {
		return fmt.Errorf("EXAMPLES_DELIMITER must not be empty")
	}
	return nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float32) float32 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
