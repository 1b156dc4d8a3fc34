package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantish/trendbot/engine"
	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay recorded bar data through the strategy",
	Long: `Backtest replays one or more bar CSV files (time,symbol,open,high,low,
close,volume) through the trend-following engine and prints a performance
summary. The same data and configuration always produce the same result.

Example:
  trendbot backtest -c config.yaml --bars data/btcusd-1h.csv`,
	RunE: runBacktest,
}

var (
	btBarPaths []string
	btCloseEnd bool
	btPerYear  float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringSliceVar(&btBarPaths, "bars", nil, "bar CSV file(s), one or more (required)")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", true, "close all open positions at end of data")
	backtestCmd.Flags().Float64Var(&btPerYear, "periods-per-year", 365*24, "bar periods per year for the Sharpe ratio")

	backtestCmd.MarkFlagRequired("bars")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	jrnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	led := ledger.New(cfg.Account.InitialCash, cfg.Account.FeeRate)
	eng, err := newEngine(cfg, led, jrnl, engine.Options{Log: log})
	if err != nil {
		return err
	}

	feeds := make([]market.BarFeed, 0, len(btBarPaths))
	for _, path := range btBarPaths {
		feed, err := market.NewCSVFeed(path)
		if err != nil {
			return fmt.Errorf("open bars %s: %w", path, err)
		}
		feeds = append(feeds, feed)
	}

	bt := &engine.Backtest{
		Engine: eng,
		Feeds:  feeds,
		Options: engine.BacktestOptions{
			CloseEnd:       btCloseEnd,
			PeriodsPerYear: btPerYear,
		},
	}

	result, err := bt.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	result.Fprint(os.Stdout)
	return nil
}
