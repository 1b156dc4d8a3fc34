// Package engine runs the per-bar decision cycle and the drivers built on it.
// One cycle covers protective exits, indicator update, signal evaluation,
// entry guards, sizing, execution, and the end-of-tick mark-to-market. The
// backtest, paper, and live drivers differ only in where bars come from and
// which executor realizes orders.
package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantish/trendbot/broker"
	"github.com/quantish/trendbot/indicators"
	"github.com/quantish/trendbot/journal"
	"github.com/quantish/trendbot/ledger"
	"github.com/quantish/trendbot/market"
	"github.com/quantish/trendbot/pkg/id"
	"github.com/quantish/trendbot/risk"
	"github.com/quantish/trendbot/strategies"
)

// Options wires an engine. Ledger and Strategy are required; Executor
// defaults to the instant-fill simulator and Journal to the no-op recorder.
type Options struct {
	Strategy strategies.Strategy
	Budget   risk.Budget
	Ledger   *ledger.Ledger
	Executor broker.Executor
	Journal  journal.Journal
	Params   indicators.Params
	LotSize  float64
	Log      zerolog.Logger
}

type Engine struct {
	log    zerolog.Logger
	strat  strategies.Strategy
	budget risk.Budget
	led    *ledger.Ledger
	exec   broker.Executor
	jrnl   journal.Journal
	params indicators.Params
	lot    float64

	trackers  map[string]*indicators.Tracker
	lastClose map[string]float64
	curve     []float64
}

func New(o Options) *Engine {
	if o.Executor == nil {
		o.Executor = broker.SimExecutor{}
	}
	if o.Journal == nil {
		o.Journal = journal.Nop{}
	}
	return &Engine{
		log:       o.Log,
		strat:     o.Strategy,
		budget:    o.Budget,
		led:       o.Ledger,
		exec:      o.Executor,
		jrnl:      o.Journal,
		params:    o.Params,
		lot:       o.LotSize,
		trackers:  make(map[string]*indicators.Tracker),
		lastClose: make(map[string]float64),
	}
}

func (e *Engine) Ledger() *ledger.Ledger { return e.led }

// EquityCurve returns the per-tick equity samples recorded so far.
func (e *Engine) EquityCurve() []float64 {
	out := make([]float64, len(e.curve))
	copy(out, e.curve)
	return out
}

// Cycle processes one tick: the latest closed bar for each symbol. Symbols
// are handled in sorted order so replays are deterministic. Bad data for one
// symbol skips that symbol only; the tick continues. Returns the marked
// equity after the tick.
func (e *Engine) Cycle(ctx context.Context, bars map[string]market.Bar) (float64, error) {
	symbols := make([]string, 0, len(bars))
	for sym := range bars {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		b := bars[sym]
		e.lastClose[sym] = b.Close
		if last, ok := e.led.LastBar(sym); ok && !b.Time.After(last) {
			// Already processed (resumed run); replaying it would double-count.
			continue
		}
		e.led.RollDay(b.Time)
		e.step(ctx, b)
		e.led.SetLastBar(sym, b.Time)
	}

	equity, err := e.led.MarkToMarket(e.lastClose)
	if err != nil {
		return equity, err
	}
	e.curve = append(e.curve, equity)

	if len(symbols) > 0 {
		t := bars[symbols[len(symbols)-1]].Time
		if err := e.jrnl.RecordEquity(journal.EquitySnapshot{
			Time:          t,
			Cash:          e.led.Cash(),
			Equity:        equity,
			RealizedToday: e.led.RealizedToday(),
			OpenPositions: len(e.led.OpenSymbols()),
		}); err != nil {
			e.log.Warn().Err(err).Msg("journal equity")
		}
	}
	return equity, nil
}

// step runs the full decision sequence for one symbol's bar.
func (e *Engine) step(ctx context.Context, b market.Bar) {
	sym := b.Symbol

	// Protective exits run before the evaluator and fill at the level price,
	// so a stop is never traded at a worse bar close.
	if _, open := e.led.Position(sym); open {
		if price, reason, hit := e.led.Protective(sym, b, e.budget.Trailing); hit {
			e.closePosition(ctx, sym, price, b.Time, reason)
		}
	}

	tr, ok := e.trackers[sym]
	if !ok {
		tr = indicators.NewTracker(e.params)
		e.trackers[sym] = tr
	}
	tr.Update(b)
	curr := tr.Current()
	prev, _ := tr.Previous()

	_, hasPos := e.led.Position(sym)
	sig := e.strat.Evaluate(b, curr, prev, hasPos)

	switch sig.Action {
	case strategies.Enter:
		e.event(journal.EventSignal, sym, b.Time, sig.Action.String(), "")
		e.enter(ctx, b, sig)
	case strategies.Exit:
		e.event(journal.EventSignal, sym, b.Time, sig.Action.String(), string(sig.Reason))
		e.closePosition(ctx, sym, b.Close, b.Time, sig.Reason)
	}
}

func (e *Engine) enter(ctx context.Context, b market.Bar, sig strategies.Signal) {
	sym := b.Symbol

	if rej := e.budget.CheckEntry(e.led.DayState()); rej != nil {
		e.log.Info().Str("symbol", sym).Str("code", rej.Code).Msg("entry blocked")
		e.event(journal.EventGuard, sym, b.Time, "REJECT", rej.Code)
		return
	}

	size, rej := e.budget.Size(risk.SizeRequest{
		Symbol:  sym,
		Price:   sig.RefPrice,
		Equity:  e.led.Equity(),
		Cash:    e.led.Cash(),
		FeeRate: e.led.FeeRate(),
		LotSize: e.lot,
	})
	if rej != nil {
		e.log.Info().Str("symbol", sym).Str("code", rej.Code).Msg("sizing rejected")
		e.event(journal.EventSizing, sym, b.Time, "REJECT", rej.Code)
		return
	}

	res, err := e.exec.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:   sym,
		Side:     broker.Buy,
		Quantity: size.Quantity,
		Type:     "MARKET",
		Price:    sig.RefPrice,
	})
	if !e.confirmed(res, err, sym, b.Time, broker.Buy) {
		return
	}

	pos, err := e.led.Enter(id.New(), sym, res.FillQuantity, res.FillPrice, b.Time, e.budget)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", sym).Msg("enter after fill")
		return
	}
	e.log.Info().
		Str("symbol", sym).
		Str("trade_id", pos.TradeID).
		Float64("quantity", pos.Quantity).
		Float64("price", pos.EntryPrice).
		Float64("stop", pos.StopLoss).
		Float64("target", pos.TakeProfit).
		Msg("position opened")
	e.event(journal.EventLedger, sym, b.Time, "OPEN", "")
}

// closePosition sells the open position at price and records the trade.
func (e *Engine) closePosition(ctx context.Context, sym string, price float64, t time.Time, reason strategies.ExitReason) {
	pos, ok := e.led.Position(sym)
	if !ok {
		return
	}

	res, err := e.exec.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:   sym,
		Side:     broker.Sell,
		Quantity: pos.Quantity,
		Type:     "MARKET",
		Price:    price,
	})
	if !e.confirmed(res, err, sym, t, broker.Sell) {
		return
	}

	trade, err := e.led.Exit(sym, res.FillPrice, t, reason)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", sym).Msg("exit after fill")
		return
	}
	e.log.Info().
		Str("symbol", sym).
		Str("trade_id", trade.TradeID).
		Str("reason", string(reason)).
		Float64("price", trade.ExitPrice).
		Float64("pnl", trade.PnL).
		Msg("position closed")
	e.event(journal.EventLedger, sym, t, "CLOSE", string(reason))

	if err := e.jrnl.RecordTrade(journal.TradeRecord{
		TradeID:    trade.TradeID,
		Symbol:     trade.Symbol,
		Side:       string(trade.Side),
		EntryPrice: trade.EntryPrice,
		ExitPrice:  trade.ExitPrice,
		Quantity:   trade.Quantity,
		EntryTime:  trade.EntryTime,
		ExitTime:   trade.ExitTime,
		PnL:        trade.PnL,
		PnLPct:     trade.PnLPct,
		Reason:     string(trade.ExitReason),
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal trade")
	}
}

// CloseAll exits every open position at its last seen close. Used by the
// backtest driver at end of data.
func (e *Engine) CloseAll(ctx context.Context, t time.Time, reason strategies.ExitReason) {
	syms := e.led.OpenSymbols()
	sort.Strings(syms)
	if len(syms) == 0 {
		return
	}
	for _, sym := range syms {
		price, ok := e.lastClose[sym]
		if !ok {
			continue
		}
		e.closePosition(ctx, sym, price, t, reason)
	}
	equity, err := e.led.MarkToMarket(e.lastClose)
	if err != nil {
		e.log.Warn().Err(err).Msg("mark after close-all")
		return
	}
	e.curve = append(e.curve, equity)
}

// confirmed reports whether an order result is a usable fill. Anything else
// leaves the ledger untouched; an unconfirmed order at shutdown is logged for
// manual reconciliation.
func (e *Engine) confirmed(res broker.OrderResult, err error, sym string, t time.Time, side broker.OrderSide) bool {
	switch {
	case errors.Is(err, broker.ErrOrderUnconfirmed) || (err != nil && ctxDone(err)):
		e.log.Warn().Err(err).Str("symbol", sym).Str("side", string(side)).
			Msg("order unresolved, reconcile against the exchange before resuming")
		e.event(journal.EventOrder, sym, t, "UNCONFIRMED", string(side))
		return false
	case err != nil:
		e.log.Error().Err(err).Str("symbol", sym).Str("side", string(side)).Msg("order failed")
		e.event(journal.EventOrder, sym, t, "ERROR", string(side))
		return false
	case res.Status != broker.Filled:
		e.log.Warn().Str("symbol", sym).Str("status", string(res.Status)).Msg("order not filled")
		e.event(journal.EventOrder, sym, t, string(res.Status), string(side))
		return false
	}
	return true
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Engine) event(kind, sym string, t time.Time, action, reason string) {
	if err := e.jrnl.RecordEvent(journal.Event{
		Time:   t,
		Kind:   kind,
		Symbol: sym,
		Action: action,
		Reason: reason,
		Equity: e.led.Equity(),
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal event")
	}
}
