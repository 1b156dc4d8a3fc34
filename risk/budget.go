// Package risk holds the per-day risk configuration, position sizing, and
// the entry guards evaluated before every attempted trade.
package risk

import "fmt"

// Budget is the risk configuration in effect for a trading day. All values
// come from configuration; none are hardcoded policy.
type Budget struct {
	PositionSizePct   float64 `json:"position_size_pct" yaml:"position_size_pct"`     // fraction of equity per trade
	StopLossPct       float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`             // 0.02 = 2%
	TakeProfitPct     float64 `json:"take_profit_pct" yaml:"take_profit_pct"`         // 0.04 = 4%
	DailyLossLimitPct float64 `json:"daily_loss_limit_pct" yaml:"daily_loss_limit_pct"` // 0.05 = 5%
	MaxPositionUSD    float64 `json:"max_position_usd" yaml:"max_position_usd"`
	MaxOpenTrades     int     `json:"max_open_trades" yaml:"max_open_trades"`

	Trailing Trailing `json:"trailing" yaml:"trailing"`
}

// Trailing configures the optional trailing-stop exit trigger. Disabled by
// default; it only arms once price has advanced ActivationPct beyond entry,
// after which the stop ratchets up to TrailPct below the high-water price
// and never moves down.
type Trailing struct {
	Enabled       bool    `json:"enabled" yaml:"enabled"`
	ActivationPct float64 `json:"activation_pct" yaml:"activation_pct"` // 0.01 = arm after +1%
	TrailPct      float64 `json:"trail_pct" yaml:"trail_pct"`           // 0.01 = trail 1% below high
}

func DefaultBudget() Budget {
	return Budget{
		PositionSizePct:   0.02,
		StopLossPct:       0.02,
		TakeProfitPct:     0.04,
		DailyLossLimitPct: 0.05,
		MaxPositionUSD:    500,
		MaxOpenTrades:     3,
	}
}

func (b Budget) Validate() error {
	if b.PositionSizePct <= 0 || b.PositionSizePct > 1 {
		return fmt.Errorf("position_size_pct must be in (0,1], got %v", b.PositionSizePct)
	}
	if b.StopLossPct <= 0 || b.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be in (0,1), got %v", b.StopLossPct)
	}
	if b.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive, got %v", b.TakeProfitPct)
	}
	if b.DailyLossLimitPct <= 0 || b.DailyLossLimitPct >= 1 {
		return fmt.Errorf("daily_loss_limit_pct must be in (0,1), got %v", b.DailyLossLimitPct)
	}
	if b.MaxPositionUSD <= 0 {
		return fmt.Errorf("max_position_usd must be positive, got %v", b.MaxPositionUSD)
	}
	if b.MaxOpenTrades <= 0 {
		return fmt.Errorf("max_open_trades must be positive, got %d", b.MaxOpenTrades)
	}
	if b.Trailing.Enabled {
		if b.Trailing.ActivationPct <= 0 || b.Trailing.TrailPct <= 0 {
			return fmt.Errorf("trailing activation_pct and trail_pct must be positive when enabled")
		}
	}
	return nil
}
