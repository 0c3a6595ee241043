package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/cashrecon/internal/domain/models"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Rules     models.ReconciliationRules
	Registers []string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// Notifications are disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	ManagerPhone  string
}

// Enabled reports whether outbound notifications are configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != ""
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SalesRange      string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	LookbackDays int
}

// MongoDBConfig holds settings for MongoDB. An empty URI keeps history in memory.
type MongoDBConfig struct {
	URI    string
	DBName string
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

	lookback, err := getenvInt("REPORT_LOOKBACK_DAYS", 7)
	if err != nil {
		return nil, err
	}

	rules, err := loadRules()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerPhone:  os.Getenv("WHATSAPP_MANAGER_PHONE"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			SalesRange:      getenvWithDefault("SALES_SHEET_RANGE", "Sales!A:O"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 21 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			LookbackDays: lookback,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "cashrecon"),
		},
		Rules:     rules,
		Registers: parseList(getenvWithDefault("REGISTERS", strings.Join(models.DefaultRegisters, ","))),
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

	if c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	if c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.ManagerPhone == "":
			return errors.New("WHATSAPP_MANAGER_PHONE must be provided")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.LookbackDays <= 0 {
		return errors.New("REPORT_LOOKBACK_DAYS must be positive")
	}

	if len(c.Registers) == 0 {
		return errors.New("REGISTERS must list at least one register")
	}

	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid reconciliation rules: %w", err)
	}

	return nil
}

func loadRules() (models.ReconciliationRules, error) {
	var override models.RulesOverride
	var err error

	if override.CashDiscrepancyThreshold, err = getenvDecimal("CASH_DISCREPANCY_THRESHOLD"); err != nil {
		return models.ReconciliationRules{}, err
	}
	if override.LargeDiscrepancyThreshold, err = getenvDecimal("LARGE_DISCREPANCY_THRESHOLD"); err != nil {
		return models.ReconciliationRules{}, err
	}
	if override.MaxReturnsPercentage, err = getenvDecimal("MAX_RETURNS_PERCENTAGE"); err != nil {
		return models.ReconciliationRules{}, err
	}
	if override.MinOpeningCash, err = getenvDecimal("MIN_OPENING_CASH"); err != nil {
		return models.ReconciliationRules{}, err
	}

	return models.DefaultRules().Apply(override), nil
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

func getenvDecimal(key string) (*decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal amount: %w", key, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%s must not be negative", key)
	}
	return &d, nil
}

func parseList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
