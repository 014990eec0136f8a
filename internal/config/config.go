package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scadenze/internal/recurring"
)

type Config struct {
	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Memory backend seed directory
	MemoryDataDir string

	// AMQP (optional, empty URL disables notifications and alerts)
	AMQPURL              string
	AMQPExchange         string
	AMQPQueue            string
	AMQPAlertsRoutingKey string

	// Google Sheets (service account)
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	SheetsCacheTTL        time.Duration

	// Forecasting
	LookbackMonths  int
	HorizonMonths   int
	MaxOccurrences  int
	RefreshInterval time.Duration
	AlertMinRisk    string

	// Categorization hints (optional)
	GeminiAPIKey string
	GeminiModel  string

	// Status API (optional, empty address disables it)
	HTTPAddr string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/scadenze.db"),
		MemoryDataDir: getEnv("MEMORY_DATA_DIR", "./data"),

		AMQPURL:              getEnv("AMQP_URL", ""),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "scadenze"),
		AMQPQueue:            getEnv("AMQP_QUEUE", "transaction_changes"),
		AMQPAlertsRoutingKey: getEnv("AMQP_ALERTS_ROUTING_KEY", "obligation_alerts"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		SheetsCacheTTL:        getEnvDuration("SHEETS_CACHE_TTL", 5*time.Minute),

		LookbackMonths:  getEnvInt("LOOKBACK_MONTHS", 6),
		HorizonMonths:   getEnvInt("HORIZON_MONTHS", recurring.DefaultHorizonMonths),
		MaxOccurrences:  getEnvInt("MAX_OCCURRENCES", recurring.DefaultMaxOccurrences),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", time.Hour),
		AlertMinRisk:    getEnv("ALERT_MIN_RISK", string(recurring.RiskMedium)),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		HTTPAddr: getEnv("HTTP_ADDR", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// ForecastOptions returns the engine options implied by the configuration.
func (c *Config) ForecastOptions() recurring.Options {
	return recurring.Options{
		HorizonMonths:  c.HorizonMonths,
		MaxOccurrences: c.MaxOccurrences,
	}
}

// AMQPEnabled reports whether a broker is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	validBackends := []string{"memory", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// SQLite also stores categorization hints, so the path is checked whenever it is set
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DataBackend == "memory" && c.MemoryDataDir == "" {
		errors = append(errors, "memory data directory cannot be empty when using memory backend")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPAlertsRoutingKey == "" {
			errors = append(errors, "AMQP alerts routing key cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets backend")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
		if c.SheetsCacheTTL < 0 {
			errors = append(errors, fmt.Sprintf("invalid sheets cache TTL %v: must not be negative", c.SheetsCacheTTL))
		}
	}

	// Validate forecasting parameters
	if c.LookbackMonths < 1 || c.LookbackMonths > 60 {
		errors = append(errors, fmt.Sprintf("invalid lookback %d months: must be between 1 and 60", c.LookbackMonths))
	}
	if c.HorizonMonths < 1 || c.HorizonMonths > 24 {
		errors = append(errors, fmt.Sprintf("invalid horizon %d months: must be between 1 and 24", c.HorizonMonths))
	}
	if c.MaxOccurrences < 1 || c.MaxOccurrences > 100 {
		errors = append(errors, fmt.Sprintf("invalid max occurrences %d: must be between 1 and 100", c.MaxOccurrences))
	}
	if c.RefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 minute", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}
	if _, err := recurring.ParseRisk(c.AlertMinRisk); err != nil {
		errors = append(errors, fmt.Sprintf("invalid alert minimum risk '%s': must be low, medium or high", c.AlertMinRisk))
	}

	if c.HTTPAddr != "" {
		if _, port, err := net.SplitHostPort(c.HTTPAddr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid HTTP address '%s': %v", c.HTTPAddr, err))
		} else if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port '%s': must be between 1 and 65535", port))
		}
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
