package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	events *csv.Writer
	files  []*os.File
}

func NewCSV(tradesPath, equityPath, eventsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	j.trades, err = open(tradesPath, []string{
		"trade_id", "symbol", "side", "entry_price", "exit_price", "quantity",
		"entry_time", "exit_time", "pnl", "pnl_pct", "reason"})
	if err != nil {
		j.Close()
		return nil, err
	}
	j.equity, err = open(equityPath, []string{
		"time", "cash", "equity", "realized_today", "open_positions"})
	if err != nil {
		j.Close()
		return nil, err
	}
	j.events, err = open(eventsPath, []string{
		"time", "kind", "symbol", "action", "reason", "equity"})
	if err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Symbol,
		t.Side,
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Quantity),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.PnL),
		f(t.PnLPct),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.Equity),
		f(e.RealizedToday),
		strconv.Itoa(e.OpenPositions),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) RecordEvent(e Event) error {
	err := j.events.Write([]string{
		e.Time.Format(time.RFC3339),
		e.Kind,
		e.Symbol,
		e.Action,
		e.Reason,
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.events.Flush()
	return j.events.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.trades, j.equity, j.events} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, fh := range j.files {
		if err := fh.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
