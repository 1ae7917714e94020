package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store drivers supported by the service.
const (
	StoreMongoDB = "mongodb"
	StoreMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Analytics AnalyticsConfig
	Scheduler SchedulerConfig
	Alerts    AlertsConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the logger level.
type LogConfig struct {
	Level string
}

// StoreConfig selects the record store implementation.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI          string
	DBName       string
	QueryTimeout time.Duration
}

// AnalyticsConfig tunes the consumption computations.
type AnalyticsConfig struct {
	Timezone           string
	DistributionSample int64
	TrendWindowDays    int
}

// SchedulerConfig holds the periodic job settings.
type SchedulerConfig struct {
	Enabled         bool
	AlertSchedule   string
	TrendExportCron string
	JobTimeout      time.Duration
}

// AlertsConfig configures the alert digest webhook.
type AlertsConfig struct {
	WebhookURL   string
	WebhookToken string
}

// SheetsConfig contains configuration required to export trends to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the trend export has credentials to work with.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Location resolves the configured timezone.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	sampleSize, err := getenvInt("DISTRIBUTION_SAMPLE_SIZE", 240)
	if err != nil {
		return nil, err
	}
	trendDays, err := getenvInt("TREND_WINDOW_DAYS", 30)
	if err != nil {
		return nil, err
	}
	queryTimeout, err := getenvDuration("MONGODB_QUERY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	jobTimeout, err := getenvDuration("SCHEDULER_JOB_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", StoreMongoDB)),
		},
		MongoDB: MongoDBConfig{
			URI:          getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName:       getenvWithDefault("MONGODB_DB_NAME", "watermeter"),
			QueryTimeout: queryTimeout,
		},
		Analytics: AnalyticsConfig{
			Timezone:           getenvWithDefault("TIMEZONE", "UTC"),
			DistributionSample: int64(sampleSize),
			TrendWindowDays:    trendDays,
		},
		Scheduler: SchedulerConfig{
			Enabled:         getenvWithDefault("SCHEDULER_ENABLED", "true") == "true",
			AlertSchedule:   getenvWithDefault("ALERT_CRON_SCHEDULE", "0 21 * * *"),
			TrendExportCron: getenvWithDefault("TREND_EXPORT_CRON_SCHEDULE", "0 1 * * *"),
			JobTimeout:      jobTimeout,
		},
		Alerts: AlertsConfig{
			WebhookURL:   os.Getenv("ALERT_WEBHOOK_URL"),
			WebhookToken: os.Getenv("ALERT_WEBHOOK_TOKEN"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case StoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongoDB, StoreMemory, c.Store.Driver)
	}

	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Analytics.DistributionSample < 1 {
		return errors.New("DISTRIBUTION_SAMPLE_SIZE must be at least 1")
	}

	if c.Analytics.TrendWindowDays < 1 {
		return errors.New("TREND_WINDOW_DAYS must be at least 1")
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.AlertSchedule == "" {
			return errors.New("ALERT_CRON_SCHEDULE must be provided")
		}
		if c.Scheduler.TrendExportCron == "" {
			return errors.New("TREND_EXPORT_CRON_SCHEDULE must be provided")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
