package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{"parses duration", "45s", time.Second, 45 * time.Second},
		{"uses default for empty", "", time.Second, time.Second},
		{"uses default for bare number", "30", time.Second, time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.envValue)

			result := getEnvAsDurationOrDefault("TEST_DURATION", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.7")
	if got := getEnvAsFloatOrDefault("TEST_FLOAT", 0.3); got != float32(0.7) {
		t.Errorf("Expected 0.7, got %v", got)
	}
	t.Setenv("TEST_FLOAT", "warm")
	if got := getEnvAsFloatOrDefault("TEST_FLOAT", 0.3); got != float32(0.3) {
		t.Errorf("Expected default 0.3, got %v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "DATA_DIR", "SQLITE_PATH", "GEMINI_MODEL", "EXAMPLES_DELIMITER", "HISTORY_MAX_FIELD_LEN", "AI_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.StoreDriver != DriverCSV || cfg.DataDir != "./data" {
		t.Errorf("Unexpected storage defaults %q %q", cfg.StoreDriver, cfg.DataDir)
	}
	if cfg.SQLitePath != "data/studywai.db" {
		t.Errorf("Expected sqlite path under data dir, got %q", cfg.SQLitePath)
	}
	if cfg.ExamplesDelimiter != "|" || cfg.HistoryMaxFieldLen != 500 || cfg.AITimeout != 30*time.Second {
		t.Errorf("Unexpected content defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when DATABASE_URL is missing for postgres")
		}
	}()
	Load()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{StoreDriver: "mongo", HistoryMaxFieldLen: 500, ExamplesDelimiter: "|"}},
		{"zero history length", Config{StoreDriver: DriverCSV, HistoryMaxFieldLen: 0, ExamplesDelimiter: "|"}},
		{"empty delimiter", Config{StoreDriver: DriverCSV, HistoryMaxFieldLen: 500}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
