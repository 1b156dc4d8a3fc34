package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantish/trendbot/broker"
	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/market"
)

func TestLoopTickBuildsSyntheticBars(t *testing.T) {
	eng := newTestEngine(t)
	feed := &sliceFeed{bars: []market.Bar{
		{Symbol: "TST", Time: t0, Close: 100},
		{Symbol: "TST", Time: t0.Add(time.Minute), Close: 101},
	}}
	loop := &Loop{
		Engine: eng,
		Prices: broker.NewFeedPriceSource(feed),
		Opts:   LoopOptions{Symbols: []string{"TST"}},
		Log:    zerolog.Nop(),
	}

	ctx := context.Background()
	loop.tick(ctx)
	loop.tick(ctx)

	curve := eng.EquityCurve()
	if len(curve) != 2 {
		t.Fatalf("equity samples: got %d, want 2", len(curve))
	}
	if last, ok := eng.Ledger().LastBar("TST"); !ok || !last.Equal(t0.Add(time.Minute)) {
		t.Fatalf("last bar: %v ok=%v", last, ok)
	}
}

func TestLoopRunPersistsSnapshotOnShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	eng := newTestEngine(t)
	feed := &sliceFeed{bars: []market.Bar{{Symbol: "TST", Time: t0, Close: 100}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := &Loop{
		Engine: eng,
		Prices: broker.NewFeedPriceSource(feed),
		Opts: LoopOptions{
			Symbols:      []string{"TST"},
			Interval:     time.Hour,
			SnapshotPath: path,
		},
		Log: zerolog.Nop(),
	}
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	led, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("load persisted snapshot: %v", err)
	}
	if led.Cash() != 10000 {
		t.Fatalf("cash: got %v, want 10000", led.Cash())
	}
	if last, ok := led.LastBar("TST"); !ok || !last.Equal(t0) {
		t.Fatalf("snapshot lost last bar: %v ok=%v", last, ok)
	}
}

func TestLoopRequiresWiring(t *testing.T) {
	loop := &Loop{Log: zerolog.Nop()}
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing engine")
	}

	loop.Engine = newTestEngine(t)
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing price source")
	}

	loop.Prices = broker.NewFeedPriceSource(&sliceFeed{})
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing symbols")
	}
}

func TestLoopResumesFromSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := newTestEngine(t)
	if _, err := first.Cycle(context.Background(), map[string]market.Bar{
		"TST": {Symbol: "TST", Time: t0, Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 10},
	}); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if err := first.Ledger().Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	led, err := ledger.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp snapshot file left behind")
	}
	if last, ok := led.LastBar("TST"); !ok || !last.Equal(t0) {
		t.Fatalf("resumed last bar: %v ok=%v", last, ok)
	}
}
