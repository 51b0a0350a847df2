package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Reminders RemindersConfig
	Digest    DigestConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig points at the SQLite file holding the inventory.
type DatabaseConfig struct {
	Path string
}

// RemindersConfig controls when reminders fire.
type RemindersConfig struct {
	Timezone     string
	Hour         int
	TestDelay    time.Duration
	TickInterval time.Duration
}

// Location resolves Timezone. Validate guarantees it loads.
func (r RemindersConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// DigestConfig holds the daily summary schedule.
type DigestConfig struct {
	CronSchedule string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether reminders and digests can be pushed to WhatsApp.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.Recipient != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether the snapshot export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// MongoDBConfig holds settings for the reminder delivery log.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether deliveries are recorded.
func (m MongoDBConfig) Enabled() bool {
	return m.URI != ""
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
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
		// Missing .env files are fine when the environment is set directly.
		_ = godotenv.Load()
	}

	hour, err := getenvInt("REMINDER_HOUR", 7)
	if err != nil {
		return nil, err
	}
	testDelay, err := getenvDuration("REMINDER_TEST_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	tick, err := getenvDuration("VIEW_TICK_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Path: getenvWithDefault("DATABASE_PATH", "pantry.db"),
		},
		Reminders: RemindersConfig{
			Timezone:     getenvWithDefault("TIMEZONE", "Local"),
			Hour:         hour,
			TestDelay:    testDelay,
			TickInterval: tick,
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON", "0 20 * * *"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Inventory!A1"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "pantry"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
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

	if c.Database.Path == "" {
		return errors.New("DATABASE_PATH must be provided")
	}

	if _, err := c.Reminders.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a known location: %w", c.Reminders.Timezone, err)
	}

	if c.Reminders.Hour < 0 || c.Reminders.Hour > 23 {
		return fmt.Errorf("REMINDER_HOUR must be within 0..23, got %d", c.Reminders.Hour)
	}

	if c.Reminders.TestDelay <= 0 {
		return errors.New("REMINDER_TEST_DELAY must be positive")
	}

	if c.Reminders.TickInterval < time.Second {
		return errors.New("VIEW_TICK_INTERVAL must be at least one second")
	}

	if _, err := cron.ParseStandard(c.Digest.CronSchedule); err != nil {
		return fmt.Errorf("DIGEST_CRON %q is invalid: %w", c.Digest.CronSchedule, err)
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided with WHATSAPP_TOKEN")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID must be provided together")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
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
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return value, nil
}
