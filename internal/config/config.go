package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"finpulse/internal/analytics"
)

// Config is the complete application configuration. Values come from
// defaults, overridden by an optional YAML file, overridden by FINPULSE_*
// environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Backend  BackendConfig  `yaml:"backend" envconfig:"BACKEND"`
	Retry    RetryConfig    `yaml:"retry" envconfig:"RETRY"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Currency CurrencyConfig `yaml:"currency" envconfig:"CURRENCY"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// BackendConfig describes the forecast/data collaborator.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// RetryConfig bounds retries of transient collaborator failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS"`
	Delay       time.Duration `yaml:"delay" envconfig:"DELAY"`
}

// SecurityConfig contains the HTTP hardening knobs.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// CurrencyConfig carries the base reporting currency and the year-keyed
// exchange-rate table used for display normalization.
type CurrencyConfig struct {
	Base  string                     `yaml:"base" envconfig:"BASE"`
	Rates map[int]map[string]float64 `yaml:"rates"`
}

// RateTable converts the configured rates into the analytics table type.
func (c CurrencyConfig) RateTable() analytics.RateTable {
	return analytics.RateTable(c.Rates)
}

// DataConfig points at locally ingested data.
type DataConfig struct {
	WorkbookPath string `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
	ExportDir    string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/finpulse.log",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			Delay:       250 * time.Millisecond,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{Enabled: true, RPS: 100, Burst: 50},
		},
		Currency: CurrencyConfig{Base: "LKR"},
		Data: DataConfig{
			WorkbookPath: "data/financials.xlsx",
			ExportDir:    "exports",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file when present,
// then FINPULSE_* environment variables on top.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults + env carry the config.
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("FINPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	for year, byCurrency := range c.Currency.Rates {
		for code, rate := range byCurrency {
			if rate <= 0 {
				return fmt.Errorf("non-positive exchange rate for %s in %d", code, year)
			}
		}
	}
	return nil
}
