package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/market"
	"github.com/quantish/trendbot/stats"
	"github.com/quantish/trendbot/strategies"
)

// BacktestOptions controls how the historical replay behaves.
type BacktestOptions struct {
	// CloseEnd exits every open position at its last close when the data
	// runs out, tagged END_OF_DATA.
	CloseEnd bool
	// PeriodsPerYear annualizes the Sharpe ratio; defaults to hourly bars.
	PeriodsPerYear float64
}

// Backtest replays pre-recorded bar feeds through an engine, lockstep by
// timestamp across symbols.
type Backtest struct {
	Engine  *Engine
	Feeds   []market.BarFeed
	Options BacktestOptions
}

// Result is the outcome of one replay.
type Result struct {
	stats.Report

	Start         time.Time
	End           time.Time
	InitialEquity float64
	FinalEquity   float64
	Trades        []ledger.ClosedTrade
}

// Run drains every feed, validates per-symbol ordering, and replays the bars
// tick by tick. The same feeds and configuration always produce the same
// result.
func (b *Backtest) Run(ctx context.Context) (Result, error) {
	if b.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if len(b.Feeds) == 0 {
		return Result{}, fmt.Errorf("backtest: at least one feed is required")
	}

	series := make(map[string]*market.Series)
	for _, feed := range b.Feeds {
		if err := drain(feed, series); err != nil {
			return Result{}, err
		}
	}

	ticks := make(map[time.Time]map[string]market.Bar)
	for sym, s := range series {
		for _, bar := range s.Bars {
			t := bar.Time.UTC()
			if ticks[t] == nil {
				ticks[t] = make(map[string]market.Bar)
			}
			ticks[t][sym] = bar
		}
	}

	times := make([]time.Time, 0, len(ticks))
	for t := range ticks {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	if len(times) == 0 {
		return Result{}, fmt.Errorf("backtest: feeds produced no bars")
	}

	initial := b.Engine.Ledger().Equity()
	for _, t := range times {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := b.Engine.Cycle(ctx, ticks[t]); err != nil {
			return Result{}, err
		}
	}

	end := times[len(times)-1]
	if b.Options.CloseEnd {
		b.Engine.CloseAll(ctx, end, strategies.ExitEndOfData)
	}

	trades := b.Engine.Ledger().ClosedTrades()
	curve := b.Engine.EquityCurve()
	perYear := b.Options.PeriodsPerYear
	if perYear == 0 {
		perYear = 365 * 24
	}

	return Result{
		Report:        stats.Compute(trades, curve, perYear),
		Start:         times[0],
		End:           end,
		InitialEquity: initial,
		FinalEquity:   b.Engine.Ledger().Equity(),
		Trades:        trades,
	}, nil
}

func drain(feed market.BarFeed, series map[string]*market.Series) error {
	defer feed.Close()
	for {
		bar, ok, err := feed.Next()
		if err != nil {
			return fmt.Errorf("backtest feed: %w", err)
		}
		if !ok {
			return nil
		}
		s := series[bar.Symbol]
		if s == nil {
			s = market.NewSeries(bar.Symbol)
			series[bar.Symbol] = s
		}
		if err := s.Append(bar); err != nil {
			return fmt.Errorf("backtest feed: %w", err)
		}
	}
}

// Fprint writes a human-readable summary of the replay.
func (r Result) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Backtest %s .. %s\n", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "  equity        %.2f -> %.2f (%.2f%%)\n", r.InitialEquity, r.FinalEquity, r.TotalReturnPct)
	fmt.Fprintf(w, "  trades        %d (wins %d, losses %d, win rate %.1f%%)\n",
		r.TotalTrades, r.Wins, r.Losses, r.WinRate)
	if math.IsInf(r.ProfitFactor, 1) {
		fmt.Fprintf(w, "  profit factor inf\n")
	} else {
		fmt.Fprintf(w, "  profit factor %.2f\n", r.ProfitFactor)
	}
	fmt.Fprintf(w, "  avg win/loss  %.2f / %.2f\n", r.AvgWin, r.AvgLoss)
	fmt.Fprintf(w, "  max drawdown  %.2f%%\n", r.MaxDrawdownPct)
	fmt.Fprintf(w, "  sharpe        %.2f\n", r.Sharpe)
	fmt.Fprintf(w, "  total pnl     %.2f\n", r.TotalPnL)
}
