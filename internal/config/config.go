package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string
	SQLiteDBPath string

	// Gemini
	GeminiModel string

	// Spreadsheet webhook sync (whole-list, fire-and-forget)
	SyncWebhookURL string

	// AMQP (per-record sheet sync queue; optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets (worker side)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Uploads
	MaxUploadBytes int64
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/rimborsi.db"),

		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		SyncWebhookURL: getEnv("SYNC_WEBHOOK_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rimborsi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Expenses"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
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

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SyncWebhookURL != "" {
		if parsedURL, err := url.Parse(c.SyncWebhookURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid sync webhook URL '%s': %v", c.SyncWebhookURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid sync webhook URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

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
	}

	if c.GeminiModel == "" {
		errors = append(errors, "Gemini model name cannot be empty")
	}

	if c.MaxUploadBytes < 1<<10 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1KB", c.MaxUploadBytes))
	}

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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
