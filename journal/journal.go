// Package journal records trades, equity snapshots, and decision events.
package journal

import "time"

type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
	PnLPct     float64
	Reason     string
}

type EquitySnapshot struct {
	Time          time.Time
	Cash          float64
	Equity        float64
	RealizedToday float64
	OpenPositions int
}

// Event kinds.
const (
	EventSignal = "signal"
	EventSizing = "sizing"
	EventLedger = "ledger"
	EventGuard  = "guard"
	EventOrder  = "order"
)

// Event is one structured decision record: enough fields to reconstruct why
// the engine did (or did not) act on a bar.
type Event struct {
	Time   time.Time
	Kind   string
	Symbol string
	Action string
	Reason string
	Equity float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordEvent(Event) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordEvent(Event) error           { return nil }
func (Nop) Close() error                      { return nil }
