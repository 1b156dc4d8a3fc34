// Package strategies contains the signal evaluators. Evaluators are pure:
// the same bar, snapshots, and position flag always produce the same signal.
package strategies

import (
	"fmt"
	"strings"

	"github.com/quantish/trendbot/indicators"
	"github.com/quantish/trendbot/market"
)

type Action int8

const (
	Hold Action = iota
	Enter
	Exit
)

func (a Action) String() string {
	switch a {
	case Enter:
		return "ENTER"
	case Exit:
		return "EXIT"
	default:
		return "HOLD"
	}
}

// ExitReason tags why a position was (or should be) closed. The protective
// reasons are produced by the ledger against bar extremes; the discretionary
// ones by the evaluator. Priority when several hold at once:
// StopLoss > TakeProfit > SignalReversal > TrendBreak > Overbought.
type ExitReason string

const (
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitSignalReversal ExitReason = "SIGNAL_REVERSAL"
	ExitTrendBreak     ExitReason = "TREND_BREAK"
	ExitOverbought     ExitReason = "OVERBOUGHT"
	ExitEndOfData      ExitReason = "END_OF_DATA"
)

// Signal is the per-symbol, per-bar decision. Exactly one is produced for
// every symbol on every bar.
type Signal struct {
	Action   Action
	Symbol   string
	RefPrice float64    // reference (close) price for an Enter
	Reason   ExitReason // set when Action == Exit
}

// Strategy evaluates one symbol's latest bar. prev is the prior bar's
// snapshot; before two ready snapshots exist the evaluator must hold.
type Strategy interface {
	Name() string
	Evaluate(bar market.Bar, curr, prev indicators.Snapshot, hasPosition bool) Signal
}

// ByName returns a strategy from the closed registry set. Selection happens
// at configuration time, never at runtime.
func ByName(name string, cfg TrendConfig) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trend", "trend-follow", "":
		return NewTrendFollow(cfg), nil
	case "noop", "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: trend, noop)", name)
	}
}
