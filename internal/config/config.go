package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HTTPPort              string
	DatabaseURL           string
	AdminAPIKey           string
	CVMURL                string
	CVMRetryMax           int
	CVMRetryBaseDelay     time.Duration
	CVMRefreshInterval    time.Duration
	QuantityPolicy        string
	SheetsSpreadsheetID   string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		DatabaseURL:           envOrDefault("DATABASE_URL", ""),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
		CVMURL:                envOrDefault("CVM_URL", "https://sistemas.cvm.gov.br/asp/cvmwww/InvNRes/tabecus.asp"),
		CVMRetryMax:           envOrDefaultInt("CVM_RETRY_MAX", 5),
		CVMRetryBaseDelay:     envOrDefaultDuration("CVM_RETRY_BASE_DELAY", 2*time.Second),
		CVMRefreshInterval:    envOrDefaultDuration("CVM_REFRESH_INTERVAL", 24*time.Hour),
		QuantityPolicy:        envOrDefault("QUANTITY_POLICY", "gross"),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
