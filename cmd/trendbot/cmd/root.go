package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantish/trendbot/config"
	"github.com/quantish/trendbot/engine"
	"github.com/quantish/trendbot/journal"
	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/strategies"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "trendbot",
	Short: "A rule-based trend-following trading engine",
	Long: `Trendbot evaluates a long-only trend-following strategy over OHLCV bars
and manages the full position lifecycle: entry signals, sizing, stops,
targets, daily risk limits, and performance accounting.

It runs in three modes:
  - backtest: historical replay over recorded bar data
  - paper:    live polling loop with virtual money and persistent state
  - live:     real order submission (dry-run by default)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to dotenv file with overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return config.Load(cfgFile)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile, cfg.Journal.EventsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func newEngine(cfg *config.Config, led *ledger.Ledger, jrnl journal.Journal, opts engine.Options) (*engine.Engine, error) {
	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.Trend)
	if err != nil {
		return nil, err
	}
	opts.Strategy = strat
	opts.Budget = cfg.Risk
	opts.Ledger = led
	opts.Journal = jrnl
	opts.Params = cfg.Indicators
	opts.LotSize = cfg.Account.LotSize
	return engine.New(opts), nil
}
