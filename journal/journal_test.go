package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func sampleTrade() TradeRecord {
	return TradeRecord{
		TradeID:    "01HX0000000000000000000000",
		Symbol:     "TST",
		Side:       "LONG",
		EntryPrice: 100,
		ExitPrice:  104,
		Quantity:   2,
		EntryTime:  t0,
		ExitTime:   t0.Add(time.Hour),
		PnL:        7.8,
		PnLPct:     3.9,
		Reason:     "TAKE_PROFIT",
	}
}

func TestCSVJournal(t *testing.T) {
	dir := t.TempDir()
	trades := filepath.Join(dir, "trades.csv")
	equity := filepath.Join(dir, "equity.csv")
	events := filepath.Join(dir, "events.csv")

	j, err := NewCSV(trades, equity, events)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(sampleTrade()))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time: t0, Cash: 9800, Equity: 10007.8, RealizedToday: 7.8, OpenPositions: 0,
	}))
	require.NoError(t, j.RecordEvent(Event{
		Time: t0, Kind: EventLedger, Symbol: "TST", Action: "CLOSE", Reason: "TAKE_PROFIT", Equity: 10007.8,
	}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(trades)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "trade_id,symbol,side")
	assert.Contains(t, content, "TST")
	assert.Contains(t, content, "TAKE_PROFIT")

	data, err = os.ReadFile(events)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ledger")
}

func TestSQLiteJournalRoundTrip(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	tr := sampleTrade()
	require.NoError(t, j.RecordTrade(tr))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: t0, Cash: 9800, Equity: 10007.8}))
	require.NoError(t, j.RecordEvent(Event{Time: t0, Kind: EventSignal, Symbol: "TST", Action: "ENTER"}))

	got, err := j.ListTradesClosedBetween(t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tr.TradeID, got[0].TradeID)
	assert.Equal(t, tr.PnL, got[0].PnL)
	assert.Equal(t, tr.Reason, got[0].Reason)

	// exit_time outside the window
	got, err = j.ListTradesClosedBetween(t0.Add(2*time.Hour), t0.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNopJournal(t *testing.T) {
	var j Journal = Nop{}
	assert.NoError(t, j.RecordTrade(TradeRecord{}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{}))
	assert.NoError(t, j.RecordEvent(Event{}))
	assert.NoError(t, j.Close())
}
