package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantish/trendbot/broker"
	"github.com/quantish/trendbot/market"
)

// LoopOptions configures the polling drivers. Paper and live runs share this
// loop; only the engine's executor differs.
type LoopOptions struct {
	Symbols  []string
	Interval time.Duration
	// SnapshotPath, when set, persists the ledger after every cycle and on
	// shutdown so the next run resumes instead of starting flat.
	SnapshotPath string
}

// Loop polls a price source on a fixed interval, converts the latest quotes
// into synthetic bars, and runs one engine cycle per tick.
type Loop struct {
	Engine *Engine
	Prices broker.PriceSource
	Opts   LoopOptions
	Log    zerolog.Logger
}

// Run polls until the context ends. A price-source failure for one symbol
// skips that symbol for the tick and the loop continues. The ledger snapshot
// is written after every cycle and once more on shutdown.
func (l *Loop) Run(ctx context.Context) error {
	if l.Engine == nil {
		return fmt.Errorf("loop: Engine is required")
	}
	if l.Prices == nil {
		return fmt.Errorf("loop: Prices is required")
	}
	if len(l.Opts.Symbols) == 0 {
		return fmt.Errorf("loop: no symbols configured")
	}
	if l.Opts.Interval <= 0 {
		l.Opts.Interval = time.Minute
	}

	ticker := time.NewTicker(l.Opts.Interval)
	defer ticker.Stop()

	l.Log.Info().
		Strs("symbols", l.Opts.Symbols).
		Dur("interval", l.Opts.Interval).
		Msg("loop started")

	for {
		l.tick(ctx)
		if err := l.persist(); err != nil {
			l.Log.Error().Err(err).Msg("persist snapshot")
		}

		select {
		case <-ctx.Done():
			l.Log.Info().Msg("shutting down, persisting final snapshot")
			if err := l.persist(); err != nil {
				return fmt.Errorf("final snapshot: %w", err)
			}
			return nil
		case <-ticker.C:
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	bars := make(map[string]market.Bar, len(l.Opts.Symbols))
	for _, sym := range l.Opts.Symbols {
		q, err := l.Prices.GetPrice(ctx, sym)
		if err != nil {
			l.Log.Warn().Err(err).Str("symbol", sym).Msg("quote unavailable, skipping symbol")
			continue
		}
		if q.Price <= 0 {
			l.Log.Warn().Str("symbol", sym).Float64("price", q.Price).Msg("bad quote, skipping symbol")
			continue
		}
		t := q.Time
		if t.IsZero() {
			t = time.Now().UTC()
		}
		bars[sym] = market.Bar{
			Symbol: sym,
			Time:   t,
			Open:   q.Price,
			High:   q.Price,
			Low:    q.Price,
			Close:  q.Price,
		}
	}
	if len(bars) == 0 {
		return
	}

	equity, err := l.Engine.Cycle(ctx, bars)
	if err != nil {
		l.Log.Error().Err(err).Msg("cycle failed")
		return
	}
	l.Log.Debug().Float64("equity", equity).Int("symbols", len(bars)).Msg("tick")
}

func (l *Loop) persist() error {
	if l.Opts.SnapshotPath == "" {
		return nil
	}
	return l.Engine.Ledger().Save(l.Opts.SnapshotPath)
}
