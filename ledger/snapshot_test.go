package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantish/trendbot/strategies"
)

func TestSnapshotRoundTrip(t *testing.T) {
	l := New(10000, 0.001)
	l.RollDay(t0)
	mustEnter(t, l, "TST", 10, 100, t0)
	mustExit(t, l, "TST", 110, t0.Add(time.Hour), strategies.ExitTakeProfit)
	mustEnter(t, l, "OTH", 5, 200, t0.Add(2*time.Hour))
	l.SetLastBar("OTH", t0.Add(2*time.Hour))
	if _, err := l.MarkToMarket(map[string]float64{"OTH": 210}); err != nil {
		t.Fatalf("mark: %v", err)
	}

	path := filepath.Join(t.TempDir(), "state.json")
	if err := l.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	approx(t, restored.Cash(), l.Cash(), "cash")
	approx(t, restored.Equity(), l.Equity(), "equity")
	approx(t, restored.RealizedToday(), l.RealizedToday(), "realized today")
	approx(t, restored.FeeRate(), l.FeeRate(), "fee rate")

	p, ok := restored.Position("OTH")
	if !ok {
		t.Fatal("open position lost in round trip")
	}
	orig, _ := l.Position("OTH")
	if p != orig {
		t.Fatalf("position mismatch: got %+v, want %+v", p, orig)
	}

	if n := len(restored.ClosedTrades()); n != 1 {
		t.Fatalf("closed trades: got %d, want 1", n)
	}
	last, ok := restored.LastBar("OTH")
	if !ok || !last.Equal(t0.Add(2*time.Hour)) {
		t.Fatalf("last bar: got %v ok=%v", last, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadRefusesCorruptSnapshots(t *testing.T) {
	write := func(t *testing.T, data string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	cases := map[string]string{
		"garbage":       `{not json`,
		"negative cash": `{"cash": -5, "open_positions": {}}`,
		"mismatched key": `{"cash": 100, "open_positions": {"TST": {
			"symbol": "OTH", "side": "LONG", "quantity": 1, "entry_price": 100,
			"stop_loss": 98, "take_profit": 104}}}`,
		"bad side": `{"cash": 100, "open_positions": {"TST": {
			"symbol": "TST", "side": "SHORT", "quantity": 1, "entry_price": 100,
			"stop_loss": 98, "take_profit": 104}}}`,
		"zero quantity": `{"cash": 100, "open_positions": {"TST": {
			"symbol": "TST", "side": "LONG", "quantity": 0, "entry_price": 100,
			"stop_loss": 98, "take_profit": 104}}}`,
		"target below stop": `{"cash": 100, "open_positions": {"TST": {
			"symbol": "TST", "side": "LONG", "quantity": 1, "entry_price": 100,
			"stop_loss": 98, "take_profit": 97}}}`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, data))
			if !errors.Is(err, ErrCorruptSnapshot) {
				t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}
