package indicators

import (
	"fmt"

	"github.com/quantish/trendbot/market"
)

// RSI is a streaming Relative Strength Index using Wilder's smoothing.
type RSI struct {
	period int

	avgGain float64
	avgLoss float64

	prevClose float64
	hasPrev   bool
	count     int

	warmupGain float64
	warmupLoss float64
}

func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup is period+1 because the first close produces no change.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.avgGain = 0
	r.avgLoss = 0
	r.prevClose = 0
	r.hasPrev = false
	r.count = 0
	r.warmupGain = 0
	r.warmupLoss = 0
}

func (r *RSI) Update(b market.Bar) {
	if !r.hasPrev {
		r.prevClose = b.Close
		r.hasPrev = true
		return
	}

	change := b.Close - r.prevClose
	r.prevClose = b.Close

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.count < r.period {
		r.warmupGain += gain
		r.warmupLoss += loss
		r.count++
		if r.count == r.period {
			r.avgGain = r.warmupGain / float64(r.period)
			r.avgLoss = r.warmupLoss / float64(r.period)
		}
		return
	}

	// Wilder's smoothing
	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
}

func (r *RSI) Ready() bool { return r.count >= r.period }

// Value returns RSI in [0,100]. A run with zero average loss returns exactly
// 100 rather than dividing by zero.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
