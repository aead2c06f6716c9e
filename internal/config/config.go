// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"trade-journal/internal/errors"
)

// AppName names the configuration directory.
const AppName = "trade-journal"

// Config holds all application configuration.
type Config struct {
	Analytics AnalyticsConfig `mapstructure:"analytics" json:"analytics" yaml:"analytics"`
	Import    ImportConfig    `mapstructure:"import" json:"import" yaml:"import"`
	Display   DisplayConfig   `mapstructure:"display" json:"display" yaml:"display"`
	Store     StoreConfig     `mapstructure:"store" json:"store" yaml:"store"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-" json:"-" yaml:"-"`
}

// AnalyticsConfig holds metric calculation parameters.
type AnalyticsConfig struct {
	AnnualizationFactor float64 `mapstructure:"annualization_factor" json:"annualization_factor" yaml:"annualization_factor"`
	RiskFreeRate        float64 `mapstructure:"risk_free_rate" json:"risk_free_rate" yaml:"risk_free_rate"` // annual, as a fraction
	OmegaThreshold      float64 `mapstructure:"omega_threshold" json:"omega_threshold" yaml:"omega_threshold"`
	InitialCapital      float64 `mapstructure:"initial_capital" json:"initial_capital" yaml:"initial_capital"`
	KellyClamp          float64 `mapstructure:"kelly_clamp" json:"kelly_clamp" yaml:"kelly_clamp"`
	TopSymbols          int     `mapstructure:"top_symbols" json:"top_symbols" yaml:"top_symbols"`
	TopTrades           int     `mapstructure:"top_trades" json:"top_trades" yaml:"top_trades"`
}

// ImportConfig holds CSV import policy.
type ImportConfig struct {
	SkipZeroPnL    bool   `mapstructure:"skip_zero_pnl" json:"skip_zero_pnl" yaml:"skip_zero_pnl"`
	DefaultAccount string `mapstructure:"default_account" json:"default_account" yaml:"default_account"`
	Format         string `mapstructure:"format" json:"format" yaml:"format"` // zerodha, generic
	BatchSize      int    `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`
}

// DisplayConfig holds terminal rendering preferences.
type DisplayConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol" json:"currency_symbol" yaml:"currency_symbol"`
	Locale         string `mapstructure:"locale" json:"locale" yaml:"locale"`
	Decimals       int    `mapstructure:"decimals" json:"decimals" yaml:"decimals"`
	ColorEnabled   bool   `mapstructure:"color_enabled" json:"color_enabled" yaml:"color_enabled"`
	CalendarDays   int    `mapstructure:"calendar_days" json:"calendar_days" yaml:"calendar_days"`
	ChartWidth     int    `mapstructure:"chart_width" json:"chart_width" yaml:"chart_width"`
	ChartHeight    int    `mapstructure:"chart_height" json:"chart_height" yaml:"chart_height"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds log level and file rotation settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" yaml:"level"`
	File       bool   `mapstructure:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the config.toml path inside configDir.
func FilePath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template and loading continues.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{Dir: configDir}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analytics.annualization_factor", 252.0)
	v.SetDefault("analytics.risk_free_rate", 0.0)
	v.SetDefault("analytics.omega_threshold", 0.0)
	v.SetDefault("analytics.initial_capital", 0.0)
	v.SetDefault("analytics.kelly_clamp", 100.0)
	v.SetDefault("analytics.top_symbols", 10)
	v.SetDefault("analytics.top_trades", 5)

	v.SetDefault("import.skip_zero_pnl", true)
	v.SetDefault("import.default_account", "")
	v.SetDefault("import.format", "zerodha")
	v.SetDefault("import.batch_size", 100)

	v.SetDefault("display.currency_symbol", "₹")
	v.SetDefault("display.locale", "en-IN")
	v.SetDefault("display.decimals", 2)
	v.SetDefault("display.color_enabled", true)
	v.SetDefault("display.calendar_days", 90)
	v.SetDefault("display.chart_width", 60)
	v.SetDefault("display.chart_height", 15)

	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, create template and fall back to defaults
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("JOURNAL_CURRENCY_SYMBOL"); v != "" {
		cfg.Display.CurrencySymbol = v
	}
	if v := os.Getenv("JOURNAL_LOCALE"); v != "" {
		cfg.Display.Locale = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("JOURNAL_INITIAL_CAPITAL"); v != "" {
		capital, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return errors.NewValidationError("JOURNAL_INITIAL_CAPITAL", v, "must be a number")
		}
		cfg.Analytics.InitialCapital = capital
	}
	return nil
}

func (c *Config) resolvePaths() {
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.Dir, "journal.db")
		return
	}
	if strings.HasPrefix(c.Store.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.Store.Path = filepath.Join(home, c.Store.Path[2:])
		}
	}
}

// LogDir returns the directory for rotated log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Dir, "logs")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analytics.AnnualizationFactor <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "annualization_factor must be positive")
	}
	if c.Analytics.RiskFreeRate < 0 || c.Analytics.RiskFreeRate >= 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "risk_free_rate must be a fraction in [0, 1)")
	}
	if c.Analytics.InitialCapital < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "initial_capital must be non-negative")
	}
	if c.Analytics.KellyClamp <= 0 || c.Analytics.KellyClamp > 100 {
		return errors.Wrapf(errors.ErrConfigInvalid, "kelly_clamp must be between 0 and 100")
	}
	if c.Analytics.TopSymbols < 0 || c.Analytics.TopTrades < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "top_symbols and top_trades must be non-negative")
	}

	switch c.Import.Format {
	case "zerodha", "generic":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "invalid import format: %s (must be 'zerodha' or 'generic')", c.Import.Format)
	}
	if c.Import.BatchSize <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "batch_size must be positive")
	}

	if c.Display.Decimals < 0 || c.Display.Decimals > 6 {
		return errors.Wrapf(errors.ErrConfigInvalid, "decimals must be between 0 and 6")
	}
	if c.Display.CalendarDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "calendar_days must be non-negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "invalid log level: %s", c.Logging.Level)
	}

	return nil
}
