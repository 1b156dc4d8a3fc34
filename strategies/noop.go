package strategies

import (
	"github.com/quantish/trendbot/indicators"
	"github.com/quantish/trendbot/market"
)

// Noop never trades. Useful as a baseline run.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Evaluate(bar market.Bar, _, _ indicators.Snapshot, _ bool) Signal {
	return Signal{Action: Hold, Symbol: bar.Symbol}
}
