package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"cotizador/models"
)

// Config holds the application settings
type Config struct {
	Env                  string        `mapstructure:"ENV"`
	Port                 string        `mapstructure:"PORT"`
	APIURL               string        `mapstructure:"API_URL"`
	AuthScheme           string        `mapstructure:"AUTH_SCHEME"`
	PricingPath          string        `mapstructure:"PRICING_PATH"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SessionTimeout       time.Duration `mapstructure:"SESSION_TIMEOUT"`
	SessionCheckInterval time.Duration `mapstructure:"SESSION_CHECK_INTERVAL"`
	DiscountDebounce     time.Duration `mapstructure:"DISCOUNT_DEBOUNCE"`
	SearchDebounce       time.Duration `mapstructure:"SEARCH_DEBOUNCE"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	MigrationURL         string        `mapstructure:"MIGRATION_URL"`
	ChromePath           string        `mapstructure:"CHROME_PATH"`
	GoogleCredentials    string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	DriveArchiveFolderID string        `mapstructure:"DRIVE_ARCHIVE_FOLDER_ID"`
	LogoDir              string        `mapstructure:"LOGO_DIR"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	DemoMetrics          bool          `mapstructure:"DEMO_METRICS"`
}

var defaults = map[string]any{
	"ENV":                            "development",
	"PORT":                           "8080",
	"API_URL":                        "http://localhost:8000",
	"AUTH_SCHEME":                    models.AuthSchemeBearer,
	"PRICING_PATH":                   "/pricing/listas",
	"REQUEST_TIMEOUT":                "15s",
	"SESSION_TIMEOUT":                "30m",
	"SESSION_CHECK_INTERVAL":         "60s",
	"DISCOUNT_DEBOUNCE":              "1200ms",
	"SEARCH_DEBOUNCE":                "250ms",
	"DATABASE_URL":                   "",
	"MIGRATION_URL":                  "file://db/migrations",
	"CHROME_PATH":                    "",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"DRIVE_ARCHIVE_FOLDER_ID":        "",
	"LOGO_DIR":                       "",
	"LOG_LEVEL":                      "info",
	"DEMO_METRICS":                   false,
}

// LoadDotEnv loads .env in development, overriding system variables.
// In production, variables should be set directly.
func LoadDotEnv(path string) error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	return godotenv.Overload(path)
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.AuthScheme = strings.ToLower(strings.TrimSpace(cfg.AuthScheme))
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe fallback
func (c Config) Validate() error {
	if c.AuthScheme != models.AuthSchemeBearer && c.AuthScheme != models.AuthSchemeBasic {
		return fmt.Errorf("invalid AUTH_SCHEME %q: expected bearer or basic", c.AuthScheme)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if !strings.HasPrefix(c.PricingPath, "/") {
		return fmt.Errorf("invalid PRICING_PATH %q: must start with /", c.PricingPath)
	}
	if c.RequestTimeout <= 0 || c.SessionTimeout <= 0 || c.SessionCheckInterval <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// Addr returns the listen address on all interfaces
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// StorageEnabled reports whether client storage goes to Postgres
func (c Config) StorageEnabled() bool {
	return c.DatabaseURL != ""
}

// ArchiveEnabled reports whether generated quotations are archived to Drive
func (c Config) ArchiveEnabled() bool {
	return c.DriveArchiveFolderID != ""
}
