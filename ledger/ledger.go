// Package ledger is the authoritative trading state machine: open positions,
// cash, equity, day-scoped realized PnL, and the closed-trade log.
//
// Transitions per symbol are FLAT → OPEN → FLAT only. The ledger is a
// single-writer object: sizing, guard evaluation, and mutation are serialized
// by the driver, and the internal mutex keeps concurrent readers safe.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quantish/trendbot/market"
	"github.com/quantish/trendbot/risk"
	"github.com/quantish/trendbot/strategies"
)

var (
	ErrPositionOpen = errors.New("position already open")
	ErrNoPosition   = errors.New("no open position")
	ErrNoPrice      = errors.New("no mark price for open position")
)

type Ledger struct {
	mu sync.Mutex

	cash             float64
	equity           float64
	positions        map[string]*Position
	realizedToday    float64
	equityAtDayStart float64
	day              time.Time // UTC midnight of the tracked trading day
	closed           []ClosedTrade
	lastBar          map[string]time.Time
	feeRate          float64
}

func New(initialCash, feeRate float64) *Ledger {
	return &Ledger{
		cash:             initialCash,
		equity:           initialCash,
		positions:        make(map[string]*Position),
		equityAtDayStart: initialCash,
		lastBar:          make(map[string]time.Time),
		feeRate:          feeRate,
	}
}

func (l *Ledger) FeeRate() float64 { return l.feeRate }

// RollDay resets the day-scoped counters when t falls on a new UTC calendar
// day. It fires exactly once per day no matter how many symbols share the
// boundary bar, and never mid-day. Returns true when a reset happened.
func (l *Ledger) RollDay(t time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := t.UTC().Truncate(24 * time.Hour)
	if !day.After(l.day) {
		return false
	}
	first := l.day.IsZero()
	l.day = day
	if first {
		// Seeding run start is not a reset: the opening counters stand.
		return false
	}
	l.realizedToday = 0
	l.equityAtDayStart = l.equity
	return true
}

// Enter opens a long position after a confirmed fill. Cash is debited by
// quantity*price*(1+fee); stop and target are derived from the budget.
func (l *Ledger) Enter(tradeID, symbol string, qty, price float64, t time.Time, b risk.Budget) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.positions[symbol]; ok {
		return Position{}, fmt.Errorf("enter %s: %w", symbol, ErrPositionOpen)
	}

	fee := qty * price * l.feeRate
	cost := qty*price + fee
	if cost > l.cash {
		return Position{}, fmt.Errorf("enter %s: cost %.2f exceeds cash %.2f", symbol, cost, l.cash)
	}

	p := &Position{
		TradeID:    tradeID,
		Symbol:     symbol,
		Side:       Long,
		EntryPrice: price,
		Quantity:   qty,
		EntryTime:  t,
		StopLoss:   price * (1 - b.StopLossPct),
		TakeProfit: price * (1 + b.TakeProfitPct),
		HighWater:  price,
		EntryFee:   fee,
	}

	l.cash -= cost
	l.positions[symbol] = p
	return *p, nil
}

// Exit closes the open position at exitPrice, credits cash net of the exit
// fee, appends the closed trade, and updates the day's realized PnL.
func (l *Ledger) Exit(symbol string, exitPrice float64, t time.Time, reason strategies.ExitReason) (ClosedTrade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return ClosedTrade{}, fmt.Errorf("exit %s: %w", symbol, ErrNoPosition)
	}

	exitFee := p.Quantity * exitPrice * l.feeRate
	proceeds := p.Quantity*exitPrice - exitFee
	pnl := p.Quantity*(exitPrice-p.EntryPrice) - p.EntryFee - exitFee

	notional := p.Quantity * p.EntryPrice
	pnlPct := 0.0
	if notional > 0 {
		pnlPct = pnl / notional * 100
	}

	trade := ClosedTrade{
		TradeID:    p.TradeID,
		Symbol:     p.Symbol,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   p.Quantity,
		EntryTime:  p.EntryTime,
		ExitTime:   t,
		PnL:        pnl,
		PnLPct:     pnlPct,
		ExitReason: reason,
	}

	l.cash += proceeds
	l.realizedToday += pnl
	l.closed = append(l.closed, trade)
	delete(l.positions, symbol)
	return trade, nil
}

// Protective updates the trailing stop from the bar's high and then checks
// the bar's extremes against the stop and target.
func (l *Ledger) Protective(symbol string, b market.Bar, t risk.Trailing) (price float64, reason strategies.ExitReason, hit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[symbol]
	if !ok {
		return 0, "", false
	}
	p.updateTrailing(t, b.High)
	return p.checkProtective(b)
}

// MarkToMarket recomputes equity as cash plus the value of all open positions
// at the supplied close prices. This is the single equity source consumed by
// the risk guards and the performance stats.
func (l *Ledger) MarkToMarket(closes map[string]float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	equity := l.cash
	for sym, p := range l.positions {
		px, ok := closes[sym]
		if !ok {
			return l.equity, fmt.Errorf("mark %s: %w", sym, ErrNoPrice)
		}
		equity += p.Quantity * px
	}
	l.equity = equity
	return equity, nil
}

// DayState is the governor's read of the day-scoped counters, captured
// atomically.
func (l *Ledger) DayState() risk.DayState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return risk.DayState{
		OpenPositions:    len(l.positions),
		RealizedToday:    l.realizedToday,
		EquityAtDayStart: l.equityAtDayStart,
	}
}

func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

func (l *Ledger) Equity() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.equity
}

func (l *Ledger) RealizedToday() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realizedToday
}

// Position returns a copy of the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

func (l *Ledger) OpenSymbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	syms := make([]string, 0, len(l.positions))
	for s := range l.positions {
		syms = append(syms, s)
	}
	return syms
}

// ClosedTrades returns a copy of the append-only closed-trade log.
func (l *Ledger) ClosedTrades() []ClosedTrade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ClosedTrade, len(l.closed))
	copy(out, l.closed)
	return out
}

// SetLastBar records the newest processed bar time for a symbol so a resumed
// run can skip bars it has already seen.
func (l *Ledger) SetLastBar(symbol string, t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastBar[symbol] = t
}

func (l *Ledger) LastBar(symbol string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.lastBar[symbol]
	return t, ok
}
