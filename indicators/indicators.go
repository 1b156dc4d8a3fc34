// Package indicators provides streaming technical indicators over closed bars.
package indicators

import "github.com/quantish/trendbot/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to use in live, paper, and backtest drivers.
type Indicator interface {
	// Name returns a stable identifier like "EMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. Callers must check Ready();
	// before warmup the value is 0 and carries no meaning.
	Value() float64
}
