// Package config reads runtime settings from the environment. A .env file
// in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// State backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendGCS    = "gcs"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendGCS}

type Config struct {
	// HTTP server
	Port            string
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// State persistence
	StateBackend      string
	SQLitePath        string
	GCSBucket         string
	GCSPrefix         string
	GoogleCredentials string
	LedgerDoubleEntry bool

	// Advisory model
	GeminiAPIKey        string
	GeminiAnalysisModel string
	GeminiReceiptModel  string
	GeminiPortraitModel string

	// Advisory jobs
	JobWorkers    int
	JobBuffer     int
	JobMaxRetries int

	// BigQuery mirror
	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string

	// Notion mirror
	NotionToken string
	NotionDBID  string
}

// Load reads the configuration. Missing keys take their defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		StateBackend:      getEnv("STATE_BACKEND", BackendSQLite),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/smartbudget.db"),
		GCSBucket:         getEnv("GCS_BUCKET", ""),
		GCSPrefix:         getEnv("GCS_PREFIX", "state"),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		LedgerDoubleEntry: getEnvBool("LEDGER_DOUBLE_ENTRY", false),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiAnalysisModel: getEnv("GEMINI_ANALYSIS_MODEL", ""),
		GeminiReceiptModel:  getEnv("GEMINI_RECEIPT_MODEL", ""),
		GeminiPortraitModel: getEnv("GEMINI_PORTRAIT_MODEL", ""),

		JobWorkers:    getEnvInt("JOB_WORKERS", 2),
		JobBuffer:     getEnvInt("JOB_BUFFER", 16),
		JobMaxRetries: getEnvInt("JOB_MAX_RETRIES", 0),

		BigQueryProject: getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset: getEnv("BIGQUERY_DATASET", "smartbudget"),
		BigQueryTable:   getEnv("BIGQUERY_TABLE", "transactions"),

		NotionToken: getEnv("NOTION_TOKEN", ""),
		NotionDBID:  getEnv("NOTION_DB_ID", ""),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be console or json", c.LogFormat))
	}

	if !slices.Contains(validBackends, c.StateBackend) {
		problems = append(problems, fmt.Sprintf("invalid state backend '%s': must be one of %v", c.StateBackend, validBackends))
	}
	if c.StateBackend == BackendSQLite && c.SQLitePath == "" {
		problems = append(problems, "SQLITE_PATH is required when using the sqlite backend")
	}
	if c.StateBackend == BackendGCS && c.GCSBucket == "" {
		problems = append(problems, "GCS_BUCKET is required when using the gcs backend")
	}
	if c.GoogleCredentials != "" {
		if _, err := os.Stat(c.GoogleCredentials); err != nil {
			problems = append(problems, fmt.Sprintf("credentials file %s: %v", c.GoogleCredentials, err))
		}
	}

	if c.JobWorkers < 1 || c.JobWorkers > 32 {
		problems = append(problems, fmt.Sprintf("invalid job workers %d: must be between 1 and 32", c.JobWorkers))
	}
	if c.JobBuffer < 1 {
		problems = append(problems, fmt.Sprintf("invalid job buffer %d: must be at least 1", c.JobBuffer))
	}
	if c.JobMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("invalid job max retries %d: must not be negative", c.JobMaxRetries))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// GCSURI returns the gs:// location of the state object prefix.
func (c *Config) GCSURI() string {
	uri := "gs://" + c.GCSBucket
	if p := strings.Trim(c.GCSPrefix, "/"); p != "" {
		uri += "/" + p
	}
	return uri
}

// AdvisoryEnabled reports whether model credentials are configured.
func (c *Config) AdvisoryEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
