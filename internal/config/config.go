// Package config provides configuration management for the trade journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"tradeverse/internal/metrics"
)

// Config holds all application configuration.
type Config struct {
	Journal     JournalConfig `mapstructure:"journal"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	UI          UIConfig      `mapstructure:"ui"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// JournalConfig holds journal storage configuration.
type JournalConfig struct {
	DBPath      string  `mapstructure:"db_path"`
	DefaultFees float64 `mapstructure:"default_fees"`
}

// MetricsConfig holds the recommendation rule thresholds. Zero values fall
// back to the engine defaults.
type MetricsConfig struct {
	MinWinRate          float64 `mapstructure:"min_win_rate"`
	MinProfitFactor     float64 `mapstructure:"min_profit_factor"`
	MaxLossToWinRatio   float64 `mapstructure:"max_loss_to_win_ratio"`
	MaxDrawdownFraction float64 `mapstructure:"max_drawdown_fraction"`
	MinStrategyWinRate  float64 `mapstructure:"min_strategy_win_rate"`
	MinWeekdayWinRate   float64 `mapstructure:"min_weekday_win_rate"`
	MinBucketTrades     int     `mapstructure:"min_bucket_trades"`
}

// UIConfig holds output configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// Credentials holds API credentials.
type Credentials struct {
	Zerodha ZerodhaCredentials `mapstructure:"zerodha"`
}

// ZerodhaCredentials holds Zerodha Kite Connect API credentials.
type ZerodhaCredentials struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradeverse"
	}
	return filepath.Join(home, ".config", "tradeverse")
}

// DefaultDBPath returns the default journal database path.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "journal.db")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. Missing files are created as
// commented templates rather than treated as errors.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Journal.DBPath == "" {
		cfg.Journal.DBPath = DefaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("journal.default_fees", 0.0)
	v.SetDefault("ui.color_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ZERODHA_API_KEY"); v != "" {
		cfg.Credentials.Zerodha.APIKey = v
	}
	if v := os.Getenv("ZERODHA_API_SECRET"); v != "" {
		cfg.Credentials.Zerodha.APISecret = v
	}
	if v := os.Getenv("TRADEVERSE_DB_PATH"); v != "" {
		cfg.Journal.DBPath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	rates := map[string]float64{
		"min_win_rate":          c.Metrics.MinWinRate,
		"max_drawdown_fraction": c.Metrics.MaxDrawdownFraction,
		"min_strategy_win_rate": c.Metrics.MinStrategyWinRate,
		"min_weekday_win_rate":  c.Metrics.MinWeekdayWinRate,
	}
	for name, v := range rates {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Metrics.MinProfitFactor < 0 {
		return fmt.Errorf("min_profit_factor must be non-negative")
	}
	if c.Metrics.MaxLossToWinRatio < 0 {
		return fmt.Errorf("max_loss_to_win_ratio must be non-negative")
	}
	if c.Metrics.MinBucketTrades < 0 {
		return fmt.Errorf("min_bucket_trades must be non-negative")
	}
	if c.Journal.DefaultFees < 0 {
		return fmt.Errorf("default_fees must be non-negative")
	}
	return nil
}

// Thresholds converts the configured cut-offs into engine thresholds, filling
// unset fields from the defaults.
func (c *Config) Thresholds() metrics.Thresholds {
	th := metrics.DefaultThresholds()
	if c.Metrics.MinWinRate > 0 {
		th.MinWinRate = c.Metrics.MinWinRate
	}
	if c.Metrics.MinProfitFactor > 0 {
		th.MinProfitFactor = c.Metrics.MinProfitFactor
	}
	if c.Metrics.MaxLossToWinRatio > 0 {
		th.MaxLossToWinRatio = c.Metrics.MaxLossToWinRatio
	}
	if c.Metrics.MaxDrawdownFraction > 0 {
		th.MaxDrawdownFraction = c.Metrics.MaxDrawdownFraction
	}
	if c.Metrics.MinStrategyWinRate > 0 {
		th.MinStrategyWinRate = c.Metrics.MinStrategyWinRate
	}
	if c.Metrics.MinWeekdayWinRate > 0 {
		th.MinWeekdayWinRate = c.Metrics.MinWeekdayWinRate
	}
	if c.Metrics.MinBucketTrades > 0 {
		th.MinBucketTrades = c.Metrics.MinBucketTrades
	}
	return th
}
