package ledger

import (
	"time"

	"github.com/quantish/trendbot/market"
	"github.com/quantish/trendbot/risk"
	"github.com/quantish/trendbot/strategies"
)

type Side string

const Long Side = "LONG"

// Position is an open holding. Owned exclusively by the ledger: created only
// by a confirmed entry, destroyed only by an exit.
type Position struct {
	TradeID    string    `json:"trade_id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	Quantity   float64   `json:"quantity"`
	EntryTime  time.Time `json:"entry_time"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	HighWater  float64   `json:"high_water"`
	EntryFee   float64   `json:"entry_fee"`
}

// updateTrailing ratchets the stop toward the high-water mark once the
// trailing trigger is armed. The stop only ever rises.
func (p *Position) updateTrailing(t risk.Trailing, barHigh float64) {
	if barHigh > p.HighWater {
		p.HighWater = barHigh
	}
	if !t.Enabled {
		return
	}
	if p.HighWater < p.EntryPrice*(1+t.ActivationPct) {
		return
	}
	if stop := p.HighWater * (1 - t.TrailPct); stop > p.StopLoss {
		p.StopLoss = stop
	}
}

// checkProtective tests the bar's extremes against the stop and target.
// The fill price is the level itself, not the bar's close. Stop beats target
// when a wide bar crosses both.
func (p *Position) checkProtective(b market.Bar) (price float64, reason strategies.ExitReason, hit bool) {
	if b.Low <= p.StopLoss {
		return p.StopLoss, strategies.ExitStopLoss, true
	}
	if b.High >= p.TakeProfit {
		return p.TakeProfit, strategies.ExitTakeProfit, true
	}
	return 0, "", false
}

// ClosedTrade is the immutable record of a completed round trip. Append-only;
// the substrate for all performance metrics.
type ClosedTrade struct {
	TradeID    string                `json:"trade_id"`
	Symbol     string                `json:"symbol"`
	Side       Side                  `json:"side"`
	EntryPrice float64               `json:"entry_price"`
	ExitPrice  float64               `json:"exit_price"`
	Quantity   float64               `json:"quantity"`
	EntryTime  time.Time             `json:"entry_time"`
	ExitTime   time.Time             `json:"exit_time"`
	PnL        float64               `json:"pnl"`     // net of entry and exit fees
	PnLPct     float64               `json:"pnl_pct"` // return on entry notional
	ExitReason strategies.ExitReason `json:"exit_reason"`
}
