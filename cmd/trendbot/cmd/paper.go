package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantish/trendbot/broker"
	"github.com/quantish/trendbot/config"
	"github.com/quantish/trendbot/engine"
	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/market"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Trade virtual money against a live price loop",
	Long: `Paper polls a price source on the configured interval, runs the same
decision cycle as a backtest, and persists the ledger after every tick so an
interrupted run resumes where it left off.

Prices come from a recorded bar CSV replayed as quotes; wire an exchange
client behind broker.PriceSource for real market data.

Example:
  trendbot paper -c config.yaml --prices data/btcusd-1h.csv`,
	RunE: runPaper,
}

var paperPricesPath string

func init() {
	rootCmd.AddCommand(paperCmd)
	paperCmd.Flags().StringVar(&paperPricesPath, "prices", "", "bar CSV replayed as the quote source (required)")
	paperCmd.MarkFlagRequired("prices")
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	interval, err := cfg.PaperInterval()
	if err != nil {
		return err
	}

	led, err := loadOrNewLedger(cfg, cfg.Paper.SnapshotPath)
	if err != nil {
		return err
	}
	log.Info().
		Float64("cash", led.Cash()).
		Float64("equity", led.Equity()).
		Msg("ledger ready")

	jrnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	eng, err := newEngine(cfg, led, jrnl, engine.Options{
		Executor: broker.SimExecutor{},
		Log:      log,
	})
	if err != nil {
		return err
	}

	feed, err := market.NewCSVFeed(paperPricesPath)
	if err != nil {
		return fmt.Errorf("open prices %s: %w", paperPricesPath, err)
	}
	prices := broker.NewFeedPriceSource(feed)
	defer prices.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &engine.Loop{
		Engine: eng,
		Prices: prices,
		Opts: engine.LoopOptions{
			Symbols:      cfg.Symbols,
			Interval:     interval,
			SnapshotPath: cfg.Paper.SnapshotPath,
		},
		Log: log,
	}
	return loop.Run(ctx)
}

// loadOrNewLedger resumes from a snapshot when one exists. A corrupt
// snapshot is fatal: trading on repaired state is worse than not starting.
func loadOrNewLedger(cfg *config.Config, path string) (*ledger.Ledger, error) {
	if path == "" {
		return ledger.New(cfg.Account.InitialCash, cfg.Account.FeeRate), nil
	}
	led, err := ledger.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger.New(cfg.Account.InitialCash, cfg.Account.FeeRate), nil
		}
		return nil, fmt.Errorf("resume from %s: %w", path, err)
	}
	return led, nil
}
