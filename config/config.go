// Package config loads and validates the trendbot configuration.
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

	"github.com/quantish/trendbot/indicators"
	"github.com/quantish/trendbot/risk"
	"github.com/quantish/trendbot/strategies"
)

// Config is the complete engine configuration.
type Config struct {
	Account    AccountConfig     `json:"account" yaml:"account"`
	Symbols    []string          `json:"symbols" yaml:"symbols"`
	Strategy   StrategyConfig    `json:"strategy" yaml:"strategy"`
	Indicators indicators.Params `json:"indicators" yaml:"indicators"`
	Risk       risk.Budget       `json:"risk" yaml:"risk"`
	Paper      PaperConfig       `json:"paper" yaml:"paper"`
	Live       LiveConfig        `json:"live" yaml:"live"`
	Journal    JournalConfig     `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
	FeeRate     float64 `json:"fee_rate" yaml:"fee_rate"` // 0.001 = 10 bps per side
	LotSize     float64 `json:"lot_size" yaml:"lot_size"` // order quantity granularity
}

// StrategyConfig selects and tunes the evaluator.
type StrategyConfig struct {
	Name  string                 `json:"name" yaml:"name"` // "trend" or "noop"
	Trend strategies.TrendConfig `json:"trend" yaml:"trend"`
}

// PaperConfig contains the paper-trading loop parameters.
type PaperConfig struct {
	Interval     string `json:"interval" yaml:"interval"` // e.g. "1m", "1h"
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`
}

// LiveConfig contains the live-trading loop parameters.
type LiveConfig struct {
	Interval     string `json:"interval" yaml:"interval"`
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path"`
	DryRun       bool   `json:"dry_run" yaml:"dry_run"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	EventsFile string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Load returns the defaults with environment overrides applied when path is
// empty, otherwise the contents of the file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from a YAML or JSON file, applies
// environment overrides, and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile loads a dotenv file into the process environment if it exists.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// applyEnv overrides selected knobs from TRENDBOT_* environment variables.
// These are the values an operator changes per deployment without editing
// the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("TRENDBOT_SYMBOLS"); v != "" {
		parts := strings.Split(v, ",")
		syms := parts[:0]
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				syms = append(syms, s)
			}
		}
		c.Symbols = syms
	}
	if v, ok := envFloat("TRENDBOT_INITIAL_CASH"); ok {
		c.Account.InitialCash = v
	}
	if v, ok := envFloat("TRENDBOT_FEE_RATE"); ok {
		c.Account.FeeRate = v
	}
	if v, ok := envFloat("TRENDBOT_POSITION_SIZE_PCT"); ok {
		c.Risk.PositionSizePct = v
	}
	if v, ok := envFloat("TRENDBOT_DAILY_LOSS_LIMIT_PCT"); ok {
		c.Risk.DailyLossLimitPct = v
	}
	if v := os.Getenv("TRENDBOT_DRY_RUN"); v != "" {
		c.Live.DryRun = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("TRENDBOT_SNAPSHOT_PATH"); v != "" {
		c.Paper.SnapshotPath = v
		c.Live.SnapshotPath = v
	}
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// PaperInterval parses the paper polling interval.
func (c *Config) PaperInterval() (time.Duration, error) {
	return parseInterval(c.Paper.Interval)
}

// LiveInterval parses the live polling interval.
func (c *Config) LiveInterval() (time.Duration, error) {
	return parseInterval(c.Live.Interval)
}

func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("bad interval %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	return d, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("empty symbol in symbols list")
		}
	}
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}
	if c.Account.FeeRate < 0 || c.Account.FeeRate >= 1 {
		return fmt.Errorf("account.fee_rate must be in [0,1)")
	}
	if c.Account.LotSize < 0 {
		return fmt.Errorf("account.lot_size must not be negative")
	}
	if _, err := strategies.ByName(c.Strategy.Name, c.Strategy.Trend); err != nil {
		return err
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if _, err := parseInterval(c.Paper.Interval); err != nil {
		return fmt.Errorf("paper: %w", err)
	}
	if _, err := parseInterval(c.Live.Interval); err != nil {
		return fmt.Errorf("live: %w", err)
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" || c.Journal.EventsFile == "" {
			return fmt.Errorf("journal trades_file, equity_file, and events_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCash: 10000,
			FeeRate:     0.001,
			LotSize:     0.0001,
		},
		Symbols: []string{"BTC-USD"},
		Strategy: StrategyConfig{
			Name:  "trend",
			Trend: strategies.TrendConfigDefaults(),
		},
		Indicators: indicators.DefaultParams(),
		Risk:       risk.DefaultBudget(),
		Paper: PaperConfig{
			Interval:     "1m",
			SnapshotPath: "./paper-state.json",
		},
		Live: LiveConfig{
			Interval:     "1m",
			SnapshotPath: "./live-state.json",
			DryRun:       true,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
			EventsFile: "./events.csv",
		},
	}
}
