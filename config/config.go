// Package config holds the bot configuration. Settings come from a
// YAML or JSON file, from environment variables, or both: FromEnv
// starts from defaults and overlays any variable that is set. A .env
// file in the working directory is honored.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete bot configuration.
type Config struct {
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Poll     PollConfig     `json:"poll" yaml:"poll"`
}

// StrategyConfig contains the symbol and moving average windows.
type StrategyConfig struct {
	Ticker string `json:"ticker" yaml:"ticker"`
	Short  int    `json:"short" yaml:"short"`
	Long   int    `json:"long" yaml:"long"`
}

// RiskConfig contains position sizing parameters.
type RiskConfig struct {
	AllocPct    float64 `json:"alloc_pct" yaml:"alloc_pct"`
	SlippagePct float64 `json:"slippage_pct" yaml:"slippage_pct"`
	Commission  float64 `json:"commission" yaml:"commission"`
}

// BrokerConfig selects the execution venue and its credentials.
type BrokerConfig struct {
	Mode           string  `json:"mode" yaml:"mode"` // "SIM" or "LIVE"
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	AlpacaKey      string  `json:"alpaca_key,omitempty" yaml:"alpaca_key,omitempty"`
	AlpacaSecret   string  `json:"alpaca_secret,omitempty" yaml:"alpaca_secret,omitempty"`
	AlpacaBaseURL  string  `json:"alpaca_base_url,omitempty" yaml:"alpaca_base_url,omitempty"`
}

// JournalConfig contains trade logging parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// PollConfig contains the polling cadence.
type PollConfig struct {
	IntervalSeconds int `json:"interval_seconds" yaml:"interval_seconds"`
}

// Interval returns the polling cadence as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration from defaults overlaid with
// environment variables. Variables not set keep their default. A .env
// file in the working directory is loaded first, without overriding
// variables already present in the environment.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	var err error
	setString(&cfg.Strategy.Ticker, "TICKER")
	err = firstErr(err, setInt(&cfg.Strategy.Short, "SHORT"))
	err = firstErr(err, setInt(&cfg.Strategy.Long, "LONG"))
	err = firstErr(err, setFloat(&cfg.Risk.AllocPct, "ALLOC_PCT"))
	err = firstErr(err, setFloat(&cfg.Risk.SlippagePct, "SLIPPAGE_PCT"))
	err = firstErr(err, setFloat(&cfg.Risk.Commission, "COMMISSION"))
	err = firstErr(err, setInt(&cfg.Poll.IntervalSeconds, "POLL_INTERVAL_SECONDS"))
	err = firstErr(err, setFloat(&cfg.Broker.InitialCapital, "INITIAL_CAPITAL"))
	setString(&cfg.Broker.Mode, "MODE")
	setString(&cfg.Broker.AlpacaKey, "ALPACA_KEY")
	setString(&cfg.Broker.AlpacaSecret, "ALPACA_SECRET")
	setString(&cfg.Broker.AlpacaBaseURL, "ALPACA_BASE_URL")
	setString(&cfg.Journal.Type, "JOURNAL_TYPE")
	setString(&cfg.Journal.TradesFile, "TRADES_FILE")
	setString(&cfg.Journal.DBPath, "DB_PATH")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Strategy.Ticker == "" {
		return fmt.Errorf("strategy.ticker is required")
	}
	if c.Strategy.Short <= 0 || c.Strategy.Long <= 0 {
		return fmt.Errorf("strategy windows must be positive")
	}
	if c.Strategy.Short >= c.Strategy.Long {
		return fmt.Errorf("strategy.short must be less than strategy.long")
	}
	if c.Risk.AllocPct <= 0 || c.Risk.AllocPct > 1 {
		return fmt.Errorf("risk.alloc_pct must be between 0 and 1")
	}
	if c.Risk.SlippagePct < 0 {
		return fmt.Errorf("risk.slippage_pct must not be negative")
	}
	if c.Risk.Commission < 0 {
		return fmt.Errorf("risk.commission must not be negative")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be positive")
	}
	if c.Broker.InitialCapital <= 0 {
		return fmt.Errorf("broker.initial_capital must be positive")
	}
	mode := strings.ToUpper(c.Broker.Mode)
	if mode != "SIM" && mode != "LIVE" {
		return fmt.Errorf("broker.mode must be 'SIM' or 'LIVE'")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesFile == "" {
		return fmt.Errorf("journal.trades_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for SQLite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Ticker: "AAPL",
			Short:  20,
			Long:   50,
		},
		Risk: RiskConfig{
			AllocPct:    0.10,
			SlippagePct: 0.0,
			Commission:  0.0,
		},
		Broker: BrokerConfig{
			Mode:           "SIM",
			InitialCapital: 100000,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./trades.db",
		},
		Poll: PollConfig{
			IntervalSeconds: 300,
		},
	}
}
