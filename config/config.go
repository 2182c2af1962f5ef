// Package config loads library settings from a TOML or YAML file named by
// AQUMEN_CONFIG, with AQUMEN_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "AQUMEN_CONFIG"

// Data configures the quote store.
type Data struct {
	DBType      string `mapstructure:"db_type"`
	SQLiteDir   string `mapstructure:"sqlite_dir"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Logging configures the process logger.
type Logging struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	LogDir  string `mapstructure:"log_dir"`
}

// Pricing holds pricer defaults.
type Pricing struct {
	ReportingCurrency string `mapstructure:"reporting_currency"`
}

// Risk holds risk ladder defaults.
type Risk struct {
	RemoveZeroThreshold float64 `mapstructure:"remove_zero_threshold"`
	Concurrency         int     `mapstructure:"concurrency"`
}

// Settings is the typed view of the whole configuration.
type Settings struct {
	Name    string  `mapstructure:"config_name"`
	Data    Data    `mapstructure:"data"`
	Logging Logging `mapstructure:"logging"`
	Solver  Solver  `mapstructure:"solver"`
	Pricing Pricing `mapstructure:"pricing"`
	Risk    Risk    `mapstructure:"risk"`
}

// Config wraps a viper instance seeded with library defaults.
type Config struct {
	v *viper.Viper
}

// New returns a config holding defaults and environment overrides only.
func New() *Config {
	v := viper.New()
	v.SetDefault("config_name", "default")
	v.SetDefault("data.db_type", "sqlite")
	v.SetDefault("data.sqlite_dir", ":memory:")
	v.SetDefault("data.postgres_dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.log_dir", "")
	v.SetDefault("solver.tolerance", DefaultSolver.Tolerance)
	v.SetDefault("solver.max_iterations", DefaultSolver.MaxIterations)
	v.SetDefault("solver.damping", DefaultSolver.Damping)
	v.SetDefault("solver.min_discount_factor", DefaultSolver.MinDiscountFactor)
	v.SetDefault("solver.derivative_threshold", DefaultSolver.DerivativeThreshold)
	v.SetDefault("solver.max_passes", DefaultSolver.MaxPasses)
	v.SetDefault("pricing.reporting_currency", "USD")
	v.SetDefault("risk.remove_zero_threshold", 1e-5)
	v.SetDefault("risk.concurrency", 0)

	v.SetEnvPrefix("AQUMEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// Load reads the file named by AQUMEN_CONFIG, or returns defaults when unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a TOML, YAML or JSON file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	c := New()
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config.LoadFile: %s: %w", path, err)
	}
	return c, nil
}

// Get returns a raw value by dotted key.
func (c *Config) Get(key string) any {
	return c.v.Get(key)
}

// GetString returns a string value by dotted key.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// Set overrides a value for this process.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// Save writes the effective configuration; the format follows the extension.
func (c *Config) Save(path string) error {
	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

// Settings decodes the configuration into typed sections.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config.Settings: %w", err)
	}
	switch s.Data.DBType {
	case "sqlite", "postgres":
	default:
		return Settings{}, fmt.Errorf("config.Settings: unsupported data.db_type %q", s.Data.DBType)
	}
	return s, nil
}

// Apply installs the solver section as the process-wide solver settings.
func (c *Config) Apply() error {
	s, err := c.Settings()
	if err != nil {
		return err
	}
	SetSolver(s.Solver)
	return nil
}
