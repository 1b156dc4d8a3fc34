package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantish/trendbot/broker"
	"github.com/quantish/trendbot/engine"
	"github.com/quantish/trendbot/market"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the strategy against real order execution",
	Long: `Live runs the polling loop with a real order executor. With --dry-run
(the default) every decision is evaluated and logged but orders are filled
synthetically and nothing reaches an exchange.

Real execution requires an exchange client wired behind broker.Executor;
none ships with this binary, so --dry-run=false is refused.`,
	RunE: runLive,
}

var (
	livePricesPath string
	liveDryRun     bool
)

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.Flags().StringVar(&livePricesPath, "prices", "", "bar CSV replayed as the quote source (required)")
	liveCmd.Flags().BoolVar(&liveDryRun, "dry-run", true, "evaluate and log orders without executing them")
	liveCmd.MarkFlagRequired("prices")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	if !liveDryRun {
		cfg.Live.DryRun = false
	}
	if !cfg.Live.DryRun {
		return fmt.Errorf("live execution requires an exchange executor; none is wired in, use --dry-run")
	}

	interval, err := cfg.LiveInterval()
	if err != nil {
		return err
	}

	led, err := loadOrNewLedger(cfg, cfg.Live.SnapshotPath)
	if err != nil {
		return err
	}

	jrnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	eng, err := newEngine(cfg, led, jrnl, engine.Options{
		Executor: broker.DryRunExecutor{Log: log},
		Log:      log,
	})
	if err != nil {
		return err
	}

	feed, err := market.NewCSVFeed(livePricesPath)
	if err != nil {
		return fmt.Errorf("open prices %s: %w", livePricesPath, err)
	}
	prices := broker.NewFeedPriceSource(feed)
	defer prices.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Warn().Msg("live mode in dry-run: orders are logged, not executed")

	loop := &engine.Loop{
		Engine: eng,
		Prices: prices,
		Opts: engine.LoopOptions{
			Symbols:      cfg.Symbols,
			Interval:     interval,
			SnapshotPath: cfg.Live.SnapshotPath,
		},
		Log: log,
	}
	return loop.Run(ctx)
}
