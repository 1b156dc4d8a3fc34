package strategies

import (
	"github.com/quantish/trendbot/indicators"
	"github.com/quantish/trendbot/market"
)

// TrendConfig holds the trend-follow filter thresholds. Zero values are
// replaced with the defaults by NewTrendFollow.
type TrendConfig struct {
	RSIFloor   float64 `json:"rsi_floor" yaml:"rsi_floor"`     // 35
	RSICeil    float64 `json:"rsi_ceil" yaml:"rsi_ceil"`       // 65
	Overbought float64 `json:"overbought" yaml:"overbought"`   // 65
	VolumeMult float64 `json:"volume_mult" yaml:"volume_mult"` // 1.2
}

func TrendConfigDefaults() TrendConfig {
	return TrendConfig{
		RSIFloor:   35,
		RSICeil:    65,
		Overbought: 65,
		VolumeMult: 1.2,
	}
}

// TrendFollow is a long-only triple-MA trend strategy with RSI and volume
// confirmation.
//
// Entry (all must hold, only when flat):
//   - fast MA crossed above slow MA on this bar (edge cross, not a level check)
//   - close above the trend MA
//   - full alignment fast > slow > trend
//   - RSI inside [RSIFloor, RSICeil]
//   - volume at least VolumeMult times its average
//
// Exit (any, only when open): fast crosses below slow, close below trend MA,
// or RSI above Overbought. Stop-loss and take-profit exits belong to the
// ledger, which checks them against bar extremes before the evaluator runs.
type TrendFollow struct {
	cfg TrendConfig
}

func NewTrendFollow(cfg TrendConfig) *TrendFollow {
	def := TrendConfigDefaults()
	if cfg.RSIFloor == 0 {
		cfg.RSIFloor = def.RSIFloor
	}
	if cfg.RSICeil == 0 {
		cfg.RSICeil = def.RSICeil
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = def.Overbought
	}
	if cfg.VolumeMult == 0 {
		cfg.VolumeMult = def.VolumeMult
	}
	return &TrendFollow{cfg: cfg}
}

func (s *TrendFollow) Name() string { return "trend-follow" }

func (s *TrendFollow) Evaluate(bar market.Bar, curr, prev indicators.Snapshot, hasPosition bool) Signal {
	hold := Signal{Action: Hold, Symbol: bar.Symbol}

	// Indicators still warming up: never act on unavailable values.
	if !curr.Ready || !prev.Ready {
		return hold
	}

	if hasPosition {
		switch {
		case prev.FastMA >= prev.SlowMA && curr.FastMA < curr.SlowMA:
			return Signal{Action: Exit, Symbol: bar.Symbol, Reason: ExitSignalReversal}
		case bar.Close < curr.TrendMA:
			return Signal{Action: Exit, Symbol: bar.Symbol, Reason: ExitTrendBreak}
		case curr.RSI > s.cfg.Overbought:
			return Signal{Action: Exit, Symbol: bar.Symbol, Reason: ExitOverbought}
		}
		return hold
	}

	// Edge cross avoids repeated re-entry signals while fast stays above slow.
	crossed := prev.FastMA <= prev.SlowMA && curr.FastMA > curr.SlowMA
	aboveTrend := bar.Close > curr.TrendMA
	aligned := curr.FastMA > curr.SlowMA && curr.SlowMA > curr.TrendMA
	rsiOK := curr.RSI >= s.cfg.RSIFloor && curr.RSI <= s.cfg.RSICeil
	// With volume-less bars (paper quotes) the average is zero and the
	// confirmation degenerates to always-true rather than always-false.
	volumeOK := bar.Volume >= curr.VolumeAvg*s.cfg.VolumeMult

	if crossed && aboveTrend && aligned && rsiOK && volumeOK {
		return Signal{Action: Enter, Symbol: bar.Symbol, RefPrice: bar.Close}
	}
	return hold
}
